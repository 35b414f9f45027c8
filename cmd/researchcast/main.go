// Command researchcast researches a topic on the web, optionally summarizes a
// video about it, and produces a Markdown report plus a two-host podcast.
//
// Usage:
//
//	researchcast run --topic "quantum computing"
//	researchcast run --topic "ocean currents" --video-url https://example.com/ocean.mp4 --html report.html
//	researchcast graph --format dot
//	researchcast config
//	researchcast inspect research_podcast_quantum_computing.wav
//
// GOOGLE_API_KEY or GEMINI_API_KEY must be set, either in the environment or in
// a .env file in the working directory.
package main

import (
	"errors"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
)

func main() {
	// Variables already present in the environment win over .env.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		os.Stderr.WriteString("researchcast: cannot load .env: " + err.Error() + "\n")
	}

	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
