package driver

// StepRecord is emitted once per simulation step.
type StepRecord struct {
	T       float64 `json:"t" msgpack:"t"`
	Ex      float64 `json:"ex" msgpack:"ex"`
	Ey      float64 `json:"ey" msgpack:"ey"`
	V       float64 `json:"v" msgpack:"v"`
	W       float64 `json:"w" msgpack:"w"`
	X       float64 `json:"x" msgpack:"x"`
	Y       float64 `json:"y" msgpack:"y"`
	Theta   float64 `json:"theta" msgpack:"theta"`
	TargetX float64 `json:"targetX" msgpack:"targetX"`
	TargetY float64 `json:"targetY" msgpack:"targetY"`
}

// Charter consumes the rolling plot window.
type Charter interface {
	Chart(window []StepRecord)
}

// ChartFunc is the func form of Charter.
type ChartFunc func([]StepRecord)

// Chart implements Charter.
func (f ChartFunc) Chart(window []StepRecord) {
	f(window)
}
