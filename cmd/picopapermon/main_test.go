package main

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/DevOats/picoPaper/pkg/remote"
)

func TestDescribe(t *testing.T) {
	require.Equal(t, `picopaper/desk/meta: {"description":"desk"}`,
		describe("picopaper/desk/meta", []byte(`{"description":"desk"}`)))

	img := &remote.DisplayImage{}
	img.Image = make([]byte, 42)
	typed, err := remote.TypedFrom(img)
	require.NoError(t, err)
	typed.Sequence = 3
	data, err := typed.Encode()
	require.NoError(t, err)
	require.Equal(t, "picopaper/desk/cmd: #3 [DisplayImage] 42 bytes", describe("picopaper/desk/cmd", data))

	typed, err = remote.TypedFrom(&remote.ShowSplash{})
	require.NoError(t, err)
	data, err = typed.Encode()
	require.NoError(t, err)
	require.Contains(t, describe("picopaper/desk/cmd", data), "[ShowSplash]")

	require.Contains(t, describe("picopaper/desk/msg", []byte{0xff}), "bad message")
}
