// Package fonts provides the embedded Go fonts as gg font sources.
package fonts

import (
	"fmt"
	"sync"

	"github.com/go-text/typesetting/language"
	"github.com/gogpu/gg/text"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"
)

// Weight selects a font source.
type Weight int

// Weights.
const (
	Regular Weight = iota
	Bold
)

var (
	once    sync.Once
	sources [2]*text.FontSource
	loadErr error
)

func load() {
	text.SetShaper(text.NewGoTextShaper())
	for w, data := range [][]byte{goregular.TTF, gobold.TTF} {
		src, err := text.NewFontSource(data)
		if err != nil {
			loadErr = fmt.Errorf("fonts: parse embedded font: %w", err)
			return
		}
		sources[w] = src
	}
}

// Source returns the font source for w.
func Source(w Weight) (*text.FontSource, error) {
	once.Do(load)
	if loadErr != nil {
		return nil, loadErr
	}
	if w != Bold {
		w = Regular
	}
	return sources[w], nil
}

// Face returns a face of the given pixel size. lang is a BCP 47 tag used
// for shaping; empty means English.
func Face(w Weight, size float64, lang string) (text.Face, error) {
	src, err := Source(w)
	if err != nil {
		return nil, err
	}
	if size <= 0 {
		size = 12
	}
	return src.Face(size, text.WithLanguage(Language(lang))), nil
}

// Language canonicalizes a language tag ("en_US" becomes "en-us").
func Language(tag string) string {
	if tag == "" {
		return "en"
	}
	return string(language.NewLanguage(tag))
}
