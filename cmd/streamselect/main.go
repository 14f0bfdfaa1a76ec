// Command streamselect compiles a yt-dlp-style format selector expression
// and evaluates it against a JSON document describing candidate media
// formats. It is the "host downloader object" of the format-selection
// engine reduced to its contractual surface: it supplies merge-policy
// parameters and a check-format probe, nothing more. It performs no
// extraction, HTTP/HLS probing, or muxing.
package main

func main() {
	Execute()
}
