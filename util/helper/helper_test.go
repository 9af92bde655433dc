package helper_util

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTime(t *testing.T) {
	ts := time.Date(2024, 5, 1, 12, 30, 0, 0, time.UTC)

	parsed, err := ParseTime(FormatTime(ts))
	require.NoError(t, err)
	assert.True(t, ts.Equal(parsed))

	parsed, err = ParseTime(nil)
	require.NoError(t, err)
	assert.True(t, parsed.IsZero())

	_, err = ParseTime(42)
	assert.Error(t, err)
}

func TestGetOptionalIDQuery(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name    string
		target  string
		wantID  int64
		wantOK  bool
		wantErr bool
	}{
		{name: "present", target: "/permissions/?user_id=12", wantID: 12, wantOK: true},
		{name: "absent", target: "/permissions/"},
		{name: "empty", target: "/permissions/?user_id="},
		{name: "negative", target: "/permissions/?user_id=-3", wantErr: true},
		{name: "not a number", target: "/permissions/?user_id=abc", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := gin.CreateTestContext(httptest.NewRecorder())
			c.Request = httptest.NewRequest("GET", tt.target, nil)

			id, ok, err := GetOptionalIDQuery(c, "user_id")
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.wantID, id)
		})
	}
}
