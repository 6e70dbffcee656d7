package affine

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSessionCookies(t *testing.T) {
	tests := []struct {
		name    string
		headers []string
		want    string
	}{
		{
			name: "multiple headers keep name=value in order",
			headers: []string{
				"affine_session=abc; Path=/; HttpOnly; SameSite=Lax",
				"affine_user_id=u1; Path=/; Expires=Wed, 21 Oct 2026 07:28:00 GMT",
				"csrf=zz",
			},
			want: "affine_session=abc; affine_user_id=u1; csrf=zz",
		},
		{
			name:    "single cookie",
			headers: []string{"affine_session=abc; Path=/"},
			want:    "affine_session=abc",
		},
		{
			name:    "combined header is split before each name",
			headers: []string{"affine_session=abc; Path=/; Expires=Wed, 21 Oct 2026 07:28:00 GMT, affine_user_id=u1; HttpOnly"},
			want:    "affine_session=abc; affine_user_id=u1",
		},
		{
			name:    "combined header without attributes",
			headers: []string{"a=1,b=2, c=3"},
			want:    "a=1; b=2; c=3",
		},
		{
			name:    "empty values are skipped",
			headers: []string{"", "a=1"},
			want:    "a=1",
		},
		{
			name:    "no cookies",
			headers: nil,
			want:    "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := http.Header{}
			for _, v := range tt.headers {
				h.Add("Set-Cookie", v)
			}
			assert.Equal(t, tt.want, sessionCookies(h))
		})
	}
}

func TestSplitCombinedCookies(t *testing.T) {
	parts := splitCombinedCookies("a=1; Expires=Thu, 01 Jan 2026 00:00:00 GMT, b=2")
	assert.Equal(t, []string{"a=1; Expires=Thu, 01 Jan 2026 00:00:00 GMT", " b=2"}, parts)
}
