package storage

import (
	"image"
	"image/color"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperr "github.com/GriffinCanCode/sepia/internal/errors"
)

func solid(c color.Color) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, 16, 16))
	for y := 0; y < 16; y++ {
		for x := 0; x < 16; x++ {
			img.Set(x, y, c)
		}
	}
	return img
}

func TestSanitize(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{`\\.\DISPLAY1`, ".DISPLAY1"},
		{"eDP-1", "eDP-1"},
		{"a|b:c/d\\e", "abcde"},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Sanitize(tt.in), "Sanitize(%q)", tt.in)
	}
}

func TestSanitize_Property(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("sanitized names contain no unsafe characters", prop.ForAll(
		func(s string) bool {
			return !strings.ContainsAny(Sanitize(s), `|\:/`)
		},
		gen.AnyString(),
	))
	properties.Property("sanitizing is idempotent", prop.ForAll(
		func(s string) bool {
			once := Sanitize(s)
			return Sanitize(once) == once
		},
		gen.AnyString(),
	))

	properties.TestingRun(t)
}

func TestFileName(t *testing.T) {
	taken := time.Date(2024, 5, 1, 9, 30, 15, 123456789, time.UTC)
	name := FileName("Display 1 [0,0 1920x1080]", taken)

	assert.Equal(t, "monitor-Display 1 [0,0 1920x1080]2024-05-01T093015.123456789Z.png", name)
	assert.False(t, strings.ContainsAny(name, `|\:/`))

	other := FileName("Display 1 [0,0 1920x1080]", taken.Add(time.Second))
	assert.NotEqual(t, name, other, "names must differ per instant")
}

func TestFileNameStripsSeparatorsFromDisplay(t *testing.T) {
	name := FileName(`..\..//etc:passwd|`, time.Unix(0, 0))
	assert.False(t, strings.ContainsAny(name, `|\:/`))
	assert.Equal(t, name, filepath.Base(name), "file name must not contain path components")
}

func TestSaveLoadDelete(t *testing.T) {
	w := NewWriter(t.TempDir())
	taken := time.Now()

	path, err := w.Save("Main", taken, solid(color.White))
	require.NoError(t, err)
	assert.Equal(t, w.Dir(), filepath.Dir(path))
	assert.FileExists(t, path)

	img, err := w.Load(path)
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 16, 16), img.Bounds())

	require.NoError(t, w.Delete(path))
	assert.NoFileExists(t, path)

	err = w.Delete(path)
	assert.True(t, apperr.IsCode(err, apperr.CodeDelete), "deleting a missing file: %v", err)
}

func TestSaveNeverOverwrites(t *testing.T) {
	w := NewWriter(t.TempDir())
	taken := time.Now()

	first, err := w.Save("Main", taken, solid(color.White))
	require.NoError(t, err)

	_, err = w.Save("Main", taken, solid(color.Black))
	assert.True(t, apperr.IsCode(err, apperr.CodeWrite), "second save at same instant: %v", err)

	img, err := w.Load(first)
	require.NoError(t, err)
	r, _, _, _ := img.At(0, 0).RGBA()
	assert.Equal(t, uint32(0xffff), r, "original capture must be intact")
}

func TestSaveIntoMissingDirectory(t *testing.T) {
	w := NewWriter(filepath.Join(t.TempDir(), "gone"))
	_, err := w.Save("Main", time.Now(), solid(color.White))
	assert.True(t, apperr.IsCode(err, apperr.CodeWrite), "got %v", err)
}

func TestLoadCorrupt(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "monitor-bad.png")
	require.NoError(t, os.WriteFile(path, []byte("not a png"), 0o644))

	_, err := NewWriter(dir).Load(path)
	assert.True(t, apperr.IsCode(err, apperr.CodeHash), "got %v", err)
}

func TestPrepareDir(t *testing.T) {
	t.Run("empty means working directory", func(t *testing.T) {
		dir, err := PrepareDir("")
		require.NoError(t, err)
		assert.Equal(t, ".", dir)
	})

	t.Run("existing directory", func(t *testing.T) {
		tmp := t.TempDir()
		dir, err := PrepareDir(tmp)
		require.NoError(t, err)
		assert.Equal(t, tmp, dir)
	})

	t.Run("missing directory is created", func(t *testing.T) {
		target := filepath.Join(t.TempDir(), "day", "shots")
		_, err := PrepareDir(target)
		require.NoError(t, err)
		assert.DirExists(t, target)
	})

	t.Run("regular file is rejected", func(t *testing.T) {
		file := filepath.Join(t.TempDir(), "notes.txt")
		require.NoError(t, os.WriteFile(file, nil, 0o644))
		_, err := PrepareDir(file)
		assert.True(t, apperr.IsCode(err, apperr.CodeSetup), "got %v", err)
	})
}
