package control

// Controller returns the rate to apply for a measurement taken at tick.
type Controller interface {
	Compute(measured float64, tick int) float64
}

type PID struct {
	Kp       float64
	Ki       float64
	Kd       float64
	Target   float64
	integral float64
	prevErr  float64
	prevTick int
	first    bool
}

func NewPID(kp, ki, kd, target float64) *PID {
	return &PID{
		Kp:     kp,
		Ki:     ki,
		Kd:     kd,
		Target: target,
		first:  true,
	}
}

// Compute feeds more when the population is below target.
func (p *PID) Compute(measured float64, tick int) float64 {
	err := p.Target - measured

	if p.first {
		p.prevErr = err
		p.prevTick = tick
		p.first = false
		return p.Kp * err
	}

	dt := float64(tick - p.prevTick)
	if dt <= 0 {
		return p.Kp*err + p.Ki*p.integral
	}

	p.integral += err * dt
	derivative := (err - p.prevErr) / dt

	p.prevErr = err
	p.prevTick = tick
	return p.Kp*err + p.Ki*p.integral + p.Kd*derivative
}

func (p *PID) Reset() {
	p.integral = 0
	p.prevErr = 0
	p.prevTick = 0
	p.first = true
}

// Manual returns whatever rate was last set.
type Manual struct {
	Rate float64
}

func NewManual(rate float64) *Manual { return &Manual{Rate: rate} }

func (m *Manual) SetRate(rate float64) { m.Rate = rate }

func (m *Manual) Compute(float64, int) float64 { return m.Rate }
