package domain

// Stage is one step of delivery shown on the tracking view.
type Stage struct {
	ID    string `json:"id"`
	Label string `json:"label"`
	ETA   string `json:"eta"`
}

// OrderStages are the tracking steps in order.
var OrderStages = []Stage{
	{ID: "confirmed", Label: "Order Confirmed", ETA: "Just now"},
	{ID: "preparing", Label: "Preparing Food", ETA: "5-10 mins"},
	{ID: "pickup", Label: "Ready for Pickup", ETA: "15-20 mins"},
	{ID: "delivery", Label: "Out for Delivery", ETA: "25-30 mins"},
	{ID: "delivered", Label: "Delivered", ETA: "30-35 mins"},
}

// Simulated progress parameters.
const (
	ProgressStart = 25
	ProgressStep  = 5
	ProgressMax   = 100
	stageWidth    = 20
)

// Progress is the simulated tracking state of one view.
type Progress struct {
	Percent int `json:"progress"`
	Step    int `json:"current_step"`
}

// NewProgress returns the state a tracking view starts from.
func NewProgress() Progress {
	return Progress{Percent: ProgressStart}
}

// Done reports whether progress has saturated.
func (p Progress) Done() bool {
	return p.Percent >= ProgressMax
}

// Tick advances one interval. Percent grows by 5 and saturates at 100. The
// step advances by one when the percentage before this tick exceeds
// (step+1)*20, never past the last stage.
func (p Progress) Tick() Progress {
	if p.Done() {
		return Progress{Percent: ProgressMax, Step: p.Step}
	}

	next := p
	if p.Step < len(OrderStages)-1 && p.Percent > (p.Step+1)*stageWidth {
		next.Step++
	}
	next.Percent = min(p.Percent+ProgressStep, ProgressMax)
	return next
}

// StageStatus is a stage annotated for display.
type StageStatus struct {
	Stage
	Completed bool `json:"completed"`
	Current   bool `json:"current"`
}

// Stages annotates OrderStages: stages up to Step are completed and the one
// after it is current.
func (p Progress) Stages() []StageStatus {
	out := make([]StageStatus, len(OrderStages))
	for i, s := range OrderStages {
		out[i] = StageStatus{
			Stage:     s,
			Completed: i <= p.Step,
			Current:   i == p.Step+1,
		}
	}
	return out
}
