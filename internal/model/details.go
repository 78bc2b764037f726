package model

// AudioFile is one audio file of an item, in playback order.
type AudioFile struct {
	// Name is the file name inside the item's download archive.
	Name string

	// Duration is the play time in seconds. Zero means unknown.
	Duration float64

	// Size in bytes. Zero means unknown.
	Size int64
}

// ItemDetails is the subset of the item detail payload a download needs.
type ItemDetails struct {
	ID         string
	CoverPath  string
	AudioFiles []AudioFile
}
