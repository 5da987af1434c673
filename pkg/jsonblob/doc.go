// Package jsonblob encodes binary payloads in a tagged base64 JSON form that round-trips exactly.
package jsonblob
