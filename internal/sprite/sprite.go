// Package sprite loads the images the game draws.
package sprite

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"io/fs"
	"os"
)

// DefaultID names the car sprite bundled with the binary
const DefaultID = "car.png"

//go:embed assets/*.png
var assets embed.FS

var (
	ErrNotFound = errors.New("sprite not found")
	ErrCorrupt  = errors.New("sprite could not be decoded")
)

// Sprite is a decoded image and its size in pixels
type Sprite struct {
	ID     string
	Image  image.Image
	Width  int
	Height int
}

// Load resolves a resource identifier to a decoded sprite.
// An empty id or DefaultID loads the bundled car; anything else is read
// from the filesystem.
func Load(id string) (*Sprite, error) {
	var (
		data []byte
		err  error
	)

	if id == "" || id == DefaultID {
		id = DefaultID
		data, err = fs.ReadFile(assets, "assets/"+DefaultID)
	} else {
		data, err = os.ReadFile(id)
	}
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		return nil, fmt.Errorf("read sprite %s: %w", id, err)
	}

	return Decode(id, data)
}

// Decode builds a sprite from encoded image bytes
func Decode(id string, data []byte) (*Sprite, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrCorrupt, id, err)
	}

	bounds := img.Bounds()
	return &Sprite{
		ID:     id,
		Image:  img,
		Width:  bounds.Dx(),
		Height: bounds.Dy(),
	}, nil
}
