package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_ParseArgs(t *testing.T) {

	t.Run("on/off: should set power", func(t *testing.T) {
		cmd, err := parseArgs([]string{"off"})
		require.NoError(t, err)
		require.NotNil(t, cmd.On)
		assert.False(t, *cmd.On)
	})

	t.Run("brightness: should parse the level", func(t *testing.T) {
		cmd, err := parseArgs([]string{"brightness", "127"})
		require.NoError(t, err)
		assert.Equal(t, 127, *cmd.Brightness)
		assert.Nil(t, cmd.On)
	})

	t.Run("hs: should parse hue and saturation", func(t *testing.T) {
		cmd, err := parseArgs([]string{"hs", "85", "254"})
		require.NoError(t, err)
		assert.Equal(t, 85, cmd.Color.Hue)
		assert.Equal(t, 254, cmd.Color.Saturation)
	})

	t.Run("bad input: should return an error", func(t *testing.T) {
		for _, args := range [][]string{{"dim"}, {"brightness"}, {"brightness", "x"}, {"hs", "1"}, {"hs", "1", "y"}} {
			_, err := parseArgs(args)
			assert.Error(t, err, args)
		}
	})
}
