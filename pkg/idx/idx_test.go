package idx_test

import (
	"testing"
	"time"

	"github.com/aussiebroadwan/coursedesk/pkg/idx"
	"github.com/stretchr/testify/require"
)

func TestNewAndParse(t *testing.T) {
	id := idx.New(idx.KindRequest)

	require.False(t, id.IsZero())
	require.Equal(t, idx.KindRequest, id.Kind())

	parsed, err := idx.Parse(id.String())
	require.NoError(t, err)
	require.Equal(t, id, parsed)
}

func TestParseRejectsMalformed(t *testing.T) {
	for _, s := range []string{
		"",
		"req",
		"_01HQ7T3Z1MZ0JQ3M6MZQ1FQ3ZV",
		"req_not-a-ulid",
		"01HQ7T3Z1MZ0JQ3M6MZQ1FQ3ZV",
	} {
		_, err := idx.Parse(s)
		require.ErrorIs(t, err, idx.ErrInvalid, "input %q", s)
	}
}

func TestOrderingWithinKind(t *testing.T) {
	a := idx.NewAt(idx.KindSession, time.Unix(1, 0).UTC())
	b := idx.NewAt(idx.KindSession, time.Unix(2, 0).UTC())

	require.Less(t, a.String(), b.String())
}

func TestTimeExtraction(t *testing.T) {
	tm := time.Unix(1700000000, 0).UTC()
	id := idx.NewAt(idx.KindSession, tm)

	require.WithinDuration(t, tm, id.Time(), time.Millisecond)
	require.True(t, idx.ID("garbage").Time().IsZero())
}
