/*
Package coursesdk provides a client SDK for the course-management Directory
Store REST API.

# Overview

The Directory Store is the source of truth for users, courses, classes and
enrollments. The SDK is a thin typed layer over its JSON endpoints:

	client := coursesdk.NewSDKClient("http://localhost:3000/api/v1")

	users, err := client.ListUsers(ctx)
	class, err := client.GetClass(ctx, classID)
	enrollments, err := client.ListEnrollmentsByClass(ctx, classID)

The only writes are user registration and enrollment creation:

	user, err := client.CreateUser(ctx, coursesdk.CreateUserRequest{...})
	enrollment, err := client.CreateEnrollment(ctx, coursesdk.CreateEnrollmentRequest{
		UserID:  userID,
		ClassID: classID,
	})

# Lookups by email

The store has no email endpoint. FindUserByEmail lists every user and returns
the one whose stored email matches byte for byte. The store lower-cases email
on creation, so callers that accept free text should lower-case it first if
they want a case-insensitive search.

# Error Handling

Non-2xx responses become *APIError carrying the status code and the server's
message, which is meant to be shown to the user verbatim:

	_, err := client.CreateEnrollment(ctx, req)
	var apiErr *coursesdk.APIError
	if errors.As(err, &apiErr) {
		fmt.Println(apiErr.Message)
	}

A 404 also matches ErrNotFound with errors.Is. Transport failures are returned
wrapped and never match APIError.

# Transport

HTTPClient is a plain *http.Client. Logging, request ids and throttling are
added by wrapping its Transport (see pkg/slogx and pkg/httpx).
*/
package coursesdk
