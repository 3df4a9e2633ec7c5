// Package dto contains the JSON shapes of SoundCloud API payloads and
// their conversion into internal/model types.
package dto
