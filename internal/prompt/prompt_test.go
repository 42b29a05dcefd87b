package prompt

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrompter_Ask(t *testing.T) {
	var out bytes.Buffer
	p := New(strings.NewReader("  octocat \nghp_secret"), &out)

	account, err := p.Ask("Enter GitHub username: ")
	require.NoError(t, err)
	assert.Equal(t, "octocat", account)

	// Non-terminal input falls back to a plain line read.
	token, err := p.AskSecret("Enter GitHub token: ")
	require.NoError(t, err)
	assert.Equal(t, "ghp_secret", token)

	assert.Equal(t, "Enter GitHub username: Enter GitHub token: ", out.String())
}

func TestPrompter_Errors(t *testing.T) {
	testCases := []struct {
		name  string
		input string
		isErr error
	}{
		{name: "blank line", input: "   \n", isErr: ErrEmpty},
		{name: "closed input", input: ""},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := New(strings.NewReader(tc.input), &bytes.Buffer{}).Ask("? ")
			assert.Error(t, err)
			if tc.isErr != nil {
				assert.ErrorIs(t, err, tc.isErr)
			}
		})
	}
}
