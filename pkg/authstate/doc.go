// Package authstate persists a messaging authentication session as one JSON record per file, serialized by a per path lock table.
package authstate
