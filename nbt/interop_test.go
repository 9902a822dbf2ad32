package nbt

import (
	"testing"

	gonbt "github.com/Tnze/go-mc/nbt"
	"github.com/stretchr/testify/require"
)

// levelData is decoded independently by go-mc to cross-check the wire format.
type levelData struct {
	LevelName  string   `nbt:"LevelName"`
	Version    int32    `nbt:"version"`
	RandomSeed int64    `nbt:"RandomSeed"`
	Hardcore   int8     `nbt:"hardcore"`
	SpawnY     int16    `nbt:"SpawnY"`
	Scale      float64  `nbt:"Scale"`
	Spawn      []int32  `nbt:"Spawn"`
	Heights    []int64  `nbt:"Heights"`
	Biomes     []byte   `nbt:"Biomes"`
	Tags       []string `nbt:"Tags"`
}

func sampleLevel() levelData {
	return levelData{
		LevelName:  "Wörld",
		Version:    19133,
		RandomSeed: -4530634556500121041,
		Hardcore:   1,
		SpawnY:     64,
		Scale:      0.25,
		Spawn:      []int32{-16, 70, 32},
		Heights:    []int64{1 << 40, -1},
		Biomes:     []byte{0, 1, 0xFF},
		Tags:       []string{"a", "b"},
	}
}

func TestInterop_EncodeDecodedByGoMC(t *testing.T) {
	in := sampleLevel()

	nt, err := MarshalNamed("", in)
	require.NoError(t, err)
	data, err := Encode(nt)
	require.NoError(t, err)

	var out levelData
	require.NoError(t, gonbt.Unmarshal(data, &out))
	require.Equal(t, in, out)
}

func TestInterop_GoMCDecodedByParse(t *testing.T) {
	in := sampleLevel()

	data, err := gonbt.Marshal(in)
	require.NoError(t, err)

	nt, err := Parse(data)
	require.NoError(t, err)

	var out levelData
	require.NoError(t, Unmarshal(nt.Tag, &out))
	require.Equal(t, in, out)

	again, err := Encode(nt)
	require.NoError(t, err)
	require.Equal(t, data, again, "re-encoding go-mc output must be bit-exact")
}
