package repositories

import (
	"fmt"
	"math"
	"slices"
	"strconv"

	"github.com/desertthunder/tessera/internal/models"
	"github.com/desertthunder/tessera/internal/shared"
)

const (
	PrefTracksPerLoad = "tracks_per_load"
	PrefColorShift    = "color_shift"
	PrefCollageWidth  = "collage_width"
	PrefCollageHeight = "collage_height"
)

const (
	DefaultColorShift    = 240.0
	DefaultCollageWidth  = 1920
	DefaultCollageHeight = 1080
	maxCollageSide       = 16384
)

// PreferenceKeys lists every known preference in display order.
var PreferenceKeys = []string{PrefTracksPerLoad, PrefColorShift, PrefCollageWidth, PrefCollageHeight}

// Preferences reads and writes user preferences with defaults applied for missing or unparsable values.
type Preferences struct {
	store KVStore
}

// NewPreferences creates preferences backed by store.
func NewPreferences(store KVStore) *Preferences {
	return &Preferences{store: store}
}

// PageSize returns tracks_per_load clamped to [models.MinPageSize, models.MaxPageSize].
func (p *Preferences) PageSize() (int, error) {
	n, err := p.getInt(PrefTracksPerLoad, models.DefaultPageSize)
	return models.ClampPageSize(n), err
}

func (p *Preferences) SetPageSize(n int) error {
	return p.store.Set(PrefTracksPerLoad, strconv.Itoa(models.ClampPageSize(n)))
}

// HueShift returns color_shift in degrees, normalized to [0, 360).
func (p *Preferences) HueShift() (float64, error) {
	raw, ok, err := p.store.Get(PrefColorShift)
	if err != nil || !ok {
		return DefaultColorShift, err
	}
	v, perr := strconv.ParseFloat(raw, 64)
	if perr != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return DefaultColorShift, nil
	}
	return normalizeDegrees(v), nil
}

func (p *Preferences) SetHueShift(deg float64) error {
	if math.IsNaN(deg) || math.IsInf(deg, 0) {
		return fmt.Errorf("%w: hue shift must be finite", shared.ErrInvalidArgument)
	}
	return p.store.Set(PrefColorShift, strconv.FormatFloat(normalizeDegrees(deg), 'f', -1, 64))
}

// CollageSize returns the preferred collage canvas.
func (p *Preferences) CollageSize() (width, height int, err error) {
	width, err = p.getInt(PrefCollageWidth, DefaultCollageWidth)
	if err != nil {
		return DefaultCollageWidth, DefaultCollageHeight, err
	}
	height, err = p.getInt(PrefCollageHeight, DefaultCollageHeight)
	return width, height, err
}

func (p *Preferences) SetCollageSize(width, height int) error {
	if width <= 0 || height <= 0 || width > maxCollageSide || height > maxCollageSide {
		return fmt.Errorf("%w: collage size %dx%d out of range", shared.ErrInvalidArgument, width, height)
	}
	if err := p.store.Set(PrefCollageWidth, strconv.Itoa(width)); err != nil {
		return err
	}
	return p.store.Set(PrefCollageHeight, strconv.Itoa(height))
}

// Set parses and stores a preference given as text, as the CLI receives it.
func (p *Preferences) Set(key, value string) error {
	switch key {
	case PrefTracksPerLoad:
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("%w: %s must be an integer", shared.ErrInvalidArgument, key)
		}
		return p.SetPageSize(n)
	case PrefColorShift:
		v, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("%w: %s must be a number", shared.ErrInvalidArgument, key)
		}
		return p.SetHueShift(v)
	case PrefCollageWidth, PrefCollageHeight:
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("%w: %s must be an integer", shared.ErrInvalidArgument, key)
		}
		w, h, err := p.CollageSize()
		if err != nil {
			return err
		}
		if key == PrefCollageWidth {
			w = n
		} else {
			h = n
		}
		return p.SetCollageSize(w, h)
	default:
		return fmt.Errorf("%w: unknown preference %q (known: %v)", shared.ErrInvalidArgument, key, PreferenceKeys)
	}
}

// All returns every preference with defaults applied, formatted for display.
func (p *Preferences) All() (map[string]string, error) {
	size, err := p.PageSize()
	if err != nil {
		return nil, err
	}
	shift, err := p.HueShift()
	if err != nil {
		return nil, err
	}
	w, h, err := p.CollageSize()
	if err != nil {
		return nil, err
	}
	return map[string]string{
		PrefTracksPerLoad: strconv.Itoa(size),
		PrefColorShift:    strconv.FormatFloat(shift, 'f', -1, 64),
		PrefCollageWidth:  strconv.Itoa(w),
		PrefCollageHeight: strconv.Itoa(h),
	}, nil
}

// IsPreference reports whether key is a known preference.
func IsPreference(key string) bool {
	return slices.Contains(PreferenceKeys, key)
}

func (p *Preferences) getInt(key string, fallback int) (int, error) {
	raw, ok, err := p.store.Get(key)
	if err != nil || !ok {
		return fallback, err
	}
	n, perr := strconv.Atoi(raw)
	if perr != nil {
		return fallback, nil
	}
	return n, nil
}

func normalizeDegrees(v float64) float64 {
	v = math.Mod(v, 360)
	if v < 0 {
		v += 360
	}
	return v
}
