package store

import "fmt"

// Key scheme for lecture artifacts. Every stage writes only its own keys, so
// re-running a stage is idempotent.

func AudioKey(lectureID string) string {
	return fmt.Sprintf("lectures/%s/audio.wav", lectureID)
}

func FramesPrefix(lectureID string) string {
	return fmt.Sprintf("lectures/%s/frames/", lectureID)
}

func TranscriptKey(lectureID string) string {
	return fmt.Sprintf("lectures/%s/transcript.json", lectureID)
}

func BoardEventsKey(lectureID string) string {
	return fmt.Sprintf("lectures/%s/boardEvents.json", lectureID)
}

func BoardOCRKey(lectureID string) string {
	return fmt.Sprintf("lectures/%s/boardOCR.json", lectureID)
}

func UploadKey(fileID string) string {
	return fmt.Sprintf("uploads/%s.mp4", fileID)
}

// Key-value store keys.

func LectureKey(lectureID string) string {
	return "lecture:" + lectureID
}

func DocKey(docID string) string {
	return "doc:" + docID
}

func KeywordsKey(lectureID string) string {
	return fmt.Sprintf("lecture:%s:keywords", lectureID)
}

func DocCountKey(lectureID string) string {
	return fmt.Sprintf("lecture:%s:docCount", lectureID)
}
