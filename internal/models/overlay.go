package models

// OverlayParams is the display configuration of a queue's overlay widget.
// The engine passes it through unchanged; only the overlay renderer reads it.
type OverlayParams struct {
	ShowInProgress   bool   `json:"showInProgress"`
	ShowRunningState bool   `json:"showRunningState"`
	RotateDelay      int    `json:"rotateDelay"`
	Position         string `json:"position"`

	Title             string `json:"title"`
	SubTitle          string `json:"subTitle"`
	QueueLabel        string `json:"queueLabel"`
	ProgressLabel     string `json:"progressLabel"`
	EmptyQueueMessage string `json:"emptyQueueMessage"`
	StatePaused       string `json:"statePaused"`
	StateRunning      string `json:"stateRunning"`

	TitleFont          string `json:"titleFont"`
	TitleSize          int    `json:"titleSize"`
	TitleColor         string `json:"titleColor"`
	SubTitleFont       string `json:"subTitleFont"`
	SubTitleSize       int    `json:"subTitleSize"`
	SubTitleColor      string `json:"subTitleColor"`
	QueueLabelFont     string `json:"queueLabelFont"`
	QueueLabelSize     int    `json:"queueLabelSize"`
	QueueLabelColor    string `json:"queueLabelColor"`
	QueueEntryFont     string `json:"queueEntryFont"`
	QueueEntrySize     int    `json:"queueEntrySize"`
	QueueEntryColor    string `json:"queueEntryColor"`
	ProgressEntryFont  string `json:"progressEntryFont"`
	ProgressEntrySize  int    `json:"progressEntrySize"`
	ProgressEntryColor string `json:"progressEntryColor"`
	StateFont          string `json:"stateFont"`
	StateSize          int    `json:"stateSize"`
	StateColor         string `json:"stateColor"`
}

// DefaultOverlayParams returns the configuration applied to new queues and
// used to backfill fields missing from persisted data.
func DefaultOverlayParams() *OverlayParams {
	return &OverlayParams{
		ShowInProgress:   true,
		ShowRunningState: true,
		RotateDelay:      0,
		Position:         "bl",

		Title:             "Waiting line",
		SubTitle:          "",
		QueueLabel:        "Waiting line",
		ProgressLabel:     "In progress",
		EmptyQueueMessage: "The line is empty",
		StatePaused:       "Paused",
		StateRunning:      "Open",

		TitleFont:          "Roboto",
		TitleSize:          30,
		TitleColor:         "#ffffff",
		SubTitleFont:       "Roboto",
		SubTitleSize:       30,
		SubTitleColor:      "#ffffff",
		QueueLabelFont:     "Roboto",
		QueueLabelSize:     30,
		QueueLabelColor:    "#ffffff",
		QueueEntryFont:     "Roboto",
		QueueEntrySize:     30,
		QueueEntryColor:    "#ffffff",
		ProgressEntryFont:  "Roboto",
		ProgressEntrySize:  30,
		ProgressEntryColor: "#ffffff",
		StateFont:          "Roboto",
		StateSize:          30,
		StateColor:         "#ffffff",
	}
}

// ApplyDefaults backfills zero-valued fields with the default configuration.
// Persisted documents written by older builds miss newer fields.
func (p *OverlayParams) ApplyDefaults() {
	def := DefaultOverlayParams()
	if p.Position == "" {
		p.Position = def.Position
	}
	if p.Title == "" {
		p.Title = def.Title
	}
	if p.QueueLabel == "" {
		p.QueueLabel = def.QueueLabel
	}
	if p.ProgressLabel == "" {
		p.ProgressLabel = def.ProgressLabel
	}
	if p.EmptyQueueMessage == "" {
		p.EmptyQueueMessage = def.EmptyQueueMessage
	}
	if p.StatePaused == "" {
		p.StatePaused = def.StatePaused
	}
	if p.StateRunning == "" {
		p.StateRunning = def.StateRunning
	}
	applyFontDefaults(&p.TitleFont, &p.TitleSize, &p.TitleColor, def)
	applyFontDefaults(&p.SubTitleFont, &p.SubTitleSize, &p.SubTitleColor, def)
	applyFontDefaults(&p.QueueLabelFont, &p.QueueLabelSize, &p.QueueLabelColor, def)
	applyFontDefaults(&p.QueueEntryFont, &p.QueueEntrySize, &p.QueueEntryColor, def)
	applyFontDefaults(&p.ProgressEntryFont, &p.ProgressEntrySize, &p.ProgressEntryColor, def)
	applyFontDefaults(&p.StateFont, &p.StateSize, &p.StateColor, def)
}

func applyFontDefaults(font *string, size *int, color *string, def *OverlayParams) {
	if *font == "" {
		*font = def.TitleFont
	}
	if *size == 0 {
		*size = def.TitleSize
	}
	if *color == "" {
		*color = def.TitleColor
	}
}
