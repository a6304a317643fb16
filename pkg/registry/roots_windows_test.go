//go:build windows

package registry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"golang.org/x/sys/windows"
)

func TestParseDriveStrings(t *testing.T) {
	var buf []uint16
	for _, d := range []string{`C:\`, `D:\`} {
		u, _ := windows.UTF16FromString(d)
		buf = append(buf, u...)
	}
	buf = append(buf, 0)

	assert.Equal(t, []RootEntry{
		{Label: "C:", Path: `C:\`},
		{Label: "D:", Path: `D:\`},
	}, parseDriveStrings(buf))
}
