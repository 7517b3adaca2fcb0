package installer

// EventKind identifies a step of an update.
type EventKind int

const (
	// EventDownloading reports download progress. It is sent once when the
	// download starts and then as bytes arrive.
	EventDownloading EventKind = iota
	// EventExtracting is sent once the archive is on disk.
	EventExtracting
	// EventUpdated is sent exactly once, after a successful extraction.
	EventUpdated
)

// String returns the event name.
func (k EventKind) String() string {
	switch k {
	case EventDownloading:
		return "downloading"
	case EventExtracting:
		return "extracting"
	case EventUpdated:
		return "updated"
	default:
		return "unknown"
	}
}

// Event describes the progress of an update.
type Event struct {
	Kind    EventKind
	Release *Release

	// BytesDone and BytesTotal are set for EventDownloading. BytesTotal is
	// -1 when the server does not announce a length.
	BytesDone  int64
	BytesTotal int64

	// Result is set for EventUpdated.
	Result *Result
}

// Observer receives update events. It is called on the updating goroutine
// and should not block.
type Observer func(Event)

func (o Observer) notify(e Event) {
	if o != nil {
		o(e)
	}
}
