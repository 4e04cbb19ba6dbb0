package domain

import "time"

type SessionID string

// OperationKind names the kind of request a history entry belongs to.
type OperationKind string

const (
	KindTranslation OperationKind = "translation"
	KindTravelGuide OperationKind = "travel_guide"
	KindDetection   OperationKind = "detection"
	KindRefinement  OperationKind = "refinement"
)

type Timestamp = time.Time
