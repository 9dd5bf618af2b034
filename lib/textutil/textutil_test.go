package textutil

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNormalizeText(t *testing.T) {
	require.Equal(t, "hello world", NormalizeText("  Hello\n\tWORLD "))
	require.Equal(t, "שם משתמש שגוי", NormalizeText("שם   משתמש\nשגוי"))
}

func TestContainsAny(t *testing.T) {
	patterns := []string{"invalid", "שגוי"}

	require.True(t, ContainsAny("Invalid username or password", patterns))
	require.True(t, ContainsAny("שם המשתמש שגוי", patterns))
	require.False(t, ContainsAny("ברוכים הבאים", patterns))
	require.False(t, ContainsAny("anything", nil))
}
