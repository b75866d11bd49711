package domain

import "fmt"

// Thresholds son los umbrales de disparo sobre la lectura de ritmo.
// Las comparaciones son estrictas: igualar un umbral no dispara.
type Thresholds struct {
	// PPMUnder: ritmo requerido por encima del cual se señala under.
	PPMUnder float64 `yaml:"ppm_under"`
	// PPMOver: ritmo requerido por debajo del cual se señala over
	// (sólo con la línea aún no superada, required > 0).
	PPMOver float64 `yaml:"ppm_over"`
	// PPMDifference: magnitud de |current - required| que dispara por
	// divergencia de ritmo.
	PPMDifference float64 `yaml:"ppm_difference"`
}

// DefaultThresholds devuelve los umbrales de operación por defecto.
func DefaultThresholds() Thresholds {
	return Thresholds{
		PPMUnder:      4.5,
		PPMOver:       1.5,
		PPMDifference: 1.25,
	}
}

// TriggerDecision es el resultado de evaluar una lectura contra los
// umbrales. Reasons conserva, en orden de evaluación, la regla que aportó
// cada disparo.
type TriggerDecision struct {
	Triggered bool
	Side      BetSide
	Reasons   []string
}

// EvaluateTrigger aplica las dos reglas de disparo a una lectura.
//
// Regla 1 (ritmo requerido, fija el lado): required > PPMUnder señala
// under; si no, 0 < required < PPMOver señala over.
//
// Regla 2 (divergencia): |PPMDifference de la lectura| > umbral dispara;
// si la regla 1 no fijó lado, lo deriva del signo (positivo = over).
//
// Ambas reglas pueden aportar razón en el mismo poll; la decisión es
// determinista y sin efectos.
func EvaluateTrigger(r PaceReading, t Thresholds) TriggerDecision {
	var d TriggerDecision

	if r.RequiredPPM > t.PPMUnder {
		d.Triggered = true
		d.Side = SideUnder
		d.Reasons = append(d.Reasons, fmt.Sprintf("required_ppm=%.2f > %g", r.RequiredPPM, t.PPMUnder))
	} else if r.RequiredPPM > 0 && r.RequiredPPM < t.PPMOver {
		d.Triggered = true
		d.Side = SideOver
		d.Reasons = append(d.Reasons, fmt.Sprintf("required_ppm=%.2f < %g", r.RequiredPPM, t.PPMOver))
	}

	if abs(r.PPMDifference) > t.PPMDifference {
		d.Triggered = true
		d.Reasons = append(d.Reasons, fmt.Sprintf("ppm_diff=%.2f > %g", abs(r.PPMDifference), t.PPMDifference))
		if d.Side == SideNone {
			if r.PPMDifference < 0 {
				d.Side = SideUnder
			} else {
				d.Side = SideOver
			}
		}
	}

	return d
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
