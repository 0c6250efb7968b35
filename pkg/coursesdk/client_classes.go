package coursesdk

import "context"

// ListAvailableClasses returns every class whose status is AVAILABLE.
func (c *SDKClient) ListAvailableClasses(ctx context.Context) ([]Class, error) {
	var classes []Class
	if err := c.getJSON(ctx, "/classes/available", &classes); err != nil {
		return nil, err
	}
	return classes, nil
}

// GetClass fetches a class by id.
func (c *SDKClient) GetClass(ctx context.Context, id string) (*Class, error) {
	var class Class
	if err := c.getJSON(ctx, pathf("/classes/%s", id), &class); err != nil {
		return nil, err
	}
	return &class, nil
}
