package conversation

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKeywords_Validate(t *testing.T) {
	tests := []struct {
		name     string
		keywords Keywords
		wantErr  string
	}{
		{
			name:     "defaults are valid",
			keywords: DefaultKeywords(),
		},
		{
			name:     "missing start keyword",
			keywords: Keywords{List: []string{"一覧"}},
			wantErr:  "start keyword",
		},
		{
			name:     "blank keyword",
			keywords: Keywords{Start: []string{"リマインド"}, Cancel: []string{" "}},
			wantErr:  "must not be blank",
		},
		{
			name:     "overlapping sets",
			keywords: Keywords{Start: []string{"リマインド"}, List: []string{"リマインド"}},
			wantErr:  "used for both",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.keywords.Validate()
			if tc.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorContains(t, err, tc.wantErr)
		})
	}
}

func TestKeywords_Match(t *testing.T) {
	k := DefaultKeywords()

	assert.True(t, k.IsStart("リマインド"))
	assert.True(t, k.IsList(" リスト "))
	assert.True(t, k.IsCancel("やめる"))
	assert.False(t, k.IsCancel(""))
	assert.False(t, k.IsStart("リマインドお願い"))
	assert.Equal(t, "リマインド", k.PrimaryStart())
	assert.Equal(t, "", Keywords{}.PrimaryStart())
}
