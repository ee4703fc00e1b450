package banner

import (
	"regexp"
	"strconv"
)

// Size is one of the BannerAdSize values or a custom "WIDTHxHEIGHT" size in density independent pixels.
type Size string

// BannerAdSize values.
const (
	SizeBanner          Size = "BANNER"
	SizeFullBanner      Size = "FULL_BANNER"
	SizeLargeBanner     Size = "LARGE_BANNER"
	SizeLeaderboard     Size = "LEADERBOARD"
	SizeMediumRectangle Size = "MEDIUM_RECTANGLE"
	SizeAdaptiveBanner  Size = "ADAPTIVE_BANNER"
	SizeFluid           Size = "FLUID"
	SizeWideSkyscraper  Size = "WIDE_SKYSCRAPER"
)

var fixedSizes = map[Size][2]int{
	SizeBanner:          {320, 50},
	SizeFullBanner:      {468, 60},
	SizeLargeBanner:     {320, 100},
	SizeLeaderboard:     {728, 90},
	SizeMediumRectangle: {300, 250},
	SizeWideSkyscraper:  {160, 600},
}

var customSizePattern = regexp.MustCompile(`^([0-9]+)x([0-9]+)$`)

// Valid reports whether s is a BannerAdSize value or a well formed custom size.
func (s Size) Valid() bool {
	if _, ok := fixedSizes[s]; ok {
		return true
	}
	if s == SizeAdaptiveBanner || s == SizeFluid {
		return true
	}
	_, _, ok := s.custom()
	return ok
}

// Dimensions returns the width and height of fixed and custom sizes. Adaptive and fluid banners are sized by
// the native layer, so ok is false for them.
func (s Size) Dimensions() (width, height int, ok bool) {
	if dims, found := fixedSizes[s]; found {
		return dims[0], dims[1], true
	}
	return s.custom()
}

func (s Size) custom() (int, int, bool) {
	match := customSizePattern.FindStringSubmatch(string(s))
	if match == nil {
		return 0, 0, false
	}
	width, errW := strconv.Atoi(match[1])
	height, errH := strconv.Atoi(match[2])
	if errW != nil || errH != nil || width == 0 || height == 0 {
		return 0, 0, false
	}
	return width, height, true
}
