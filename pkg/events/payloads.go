package events

// PlanEntryData is one entry of a "plan" event's Data payload.
type PlanEntryData struct {
	ProductID string `json:"product_id"`
	Reason    string `json:"reason"`
}

// PlanData wraps the ordered plan entries.
type PlanData struct {
	Entries []PlanEntryData `json:"entries"`
}

// NavigationData is the Data payload of a "navigation" event.
type NavigationData struct {
	URL string `json:"url"`
}

// AnswerData is the Data payload of an "answer" event: the Analyzer's
// structured result.
type AnswerData struct {
	Answer     string   `json:"answer"`
	Rationale  []string `json:"rationale"`
	KeyMetrics []string `json:"key_metrics"`
}

// ClusterPredictionData is the Data payload of a "cluster_prediction" event.
type ClusterPredictionData struct {
	ParentID   string  `json:"parent_cluster_id"`
	ChildID    string  `json:"child_cluster_id"`
	Confidence float64 `json:"confidence"`
}

// ErrorData is the Data payload of an "error" event.
type ErrorData struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

// User builds a "user" event echoing the submitted question.
func User(question string) Event { return Event{Type: TypeUser, Content: question} }

// Thought builds a "thought" event describing the current pipeline step.
func Thought(content string) Event { return Event{Type: TypeThought, Content: content} }

// Plan builds a "plan" event from the Planner's ordered entries.
func Plan(entries []PlanEntryData) Event {
	return Event{Type: TypePlan, Content: "plan ready", Data: PlanData{Entries: entries}}
}

// Navigation builds a "navigation" event for a product's route hint.
func Navigation(url string) Event {
	return Event{Type: TypeNavigation, Content: "navigate", Data: NavigationData{URL: url}}
}

// Answer builds an "answer" event from the Analyzer's structured result.
func Answer(answer string, rationale, keyMetrics []string) Event {
	return Event{
		Type:    TypeAnswer,
		Content: answer,
		Data:    AnswerData{Answer: answer, Rationale: rationale, KeyMetrics: keyMetrics},
	}
}

// Chat builds a "chat" event for the direct-LLM chat flow.
func Chat(content string) Event { return Event{Type: TypeChat, Content: content} }

// Confirmation builds a "confirmation" event requesting an explicit mode choice.
func Confirmation(content string) Event { return Event{Type: TypeConfirmation, Content: content} }

// ClusterPrediction builds a "cluster_prediction" event.
func ClusterPrediction(parentID, childID string, confidence float64) Event {
	return Event{
		Type:    TypeClusterPrediction,
		Content: "cluster predicted",
		Data: ClusterPredictionData{
			ParentID:   parentID,
			ChildID:    childID,
			Confidence: confidence,
		},
	}
}

// GlowOn builds the UI-hint "glow_on" event.
func GlowOn() Event { return Event{Type: TypeGlowOn, Content: "glow_on"} }

// Complete builds the terminal "complete" event.
func Complete() Event { return Event{Type: TypeComplete, Content: "complete"} }

// Error builds the terminal "error" event for the given apperror kind and
// message.
func Error(kind, message string) Event {
	return Event{Type: TypeError, Content: message, Data: ErrorData{Kind: kind, Message: message}}
}
