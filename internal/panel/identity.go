package panel

import (
	"fmt"
	"math/rand"
)

// Chrome major versions recent enough not to stand out.
var chromeMajors = []int{126, 127, 128, 129, 130}

var platforms = []string{
	"Windows NT 10.0; Win64; x64",
	"Macintosh; Intel Mac OS X 10_15_7",
	"X11; Linux x86_64",
}

// randomUserAgent builds a fresh client identity for each run so
// consecutive attempts do not share a browser fingerprint.
func randomUserAgent() string {
	major := chromeMajors[rand.Intn(len(chromeMajors))]
	build := rand.Intn(6000) + 1000
	patch := rand.Intn(200)
	platform := platforms[rand.Intn(len(platforms))]
	return fmt.Sprintf(
		"Mozilla/5.0 (%s) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/%d.0.%d.%d Safari/537.36",
		platform, major, build, patch,
	)
}
