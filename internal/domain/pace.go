package domain

// OvertimeMinutes es la duración de una prórroga en minutos. Igual para
// NBA y NCAA.
const OvertimeMinutes = 5.0

// paceBlendMinutes es la ventana inicial (en minutos jugados) durante la
// cual la proyección final se mezcla con la línea publicada para amortiguar
// la varianza de muestras pequeñas.
const paceBlendMinutes = 5.0

// PaceReading es la lectura de ritmo derivada de un snapshot. Todos los
// campos son deterministas respecto al snapshot de entrada.
type PaceReading struct {
	Total            int     `json:"total"`             // puntos combinados actuales
	MinutesElapsed   float64 `json:"minutes_elapsed"`   // minutos jugados, incluye prórrogas ya alcanzadas
	MinutesRemaining float64 `json:"minutes_remaining"` // minutos de juego restantes
	RequiredPPM      float64 `json:"required_ppm"`      // ritmo necesario para alcanzar la línea; 0 si ya superada
	CurrentPPM       float64 `json:"current_ppm"`       // ritmo observado; 0 sin tiempo jugado
	PPMDifference    float64 `json:"ppm_difference"`    // CurrentPPM - RequiredPPM
	ProjectedFinal   float64 `json:"projected_final"`   // proyección del total final
}

// regulationSplit devuelve la estructura reglamentaria implicada por la
// duración total: 4 períodos de 12 min para partidos de 48, 2 de 20 para
// partidos de 40.
func regulationSplit(totalMinutes float64) (periods int, periodMinutes float64) {
	if totalMinutes >= 48 {
		return 4, 12
	}
	return 2, 20
}

// ComputeReading deriva la lectura de ritmo de un snapshot.
//
// Minutos restantes: reloj del período actual más los períodos
// reglamentarios completos aún no iniciados. En el último período
// reglamentario o en prórroga, restante = reloj. Antes del salto inicial
// (Period 0), restante = duración completa.
//
// Minutos jugados: duración del partido menos restante, donde la duración
// base se extiende 5 min por cada prórroga ya alcanzada. Así CurrentPPM no
// se infla artificialmente en partidos con prórroga.
//
// Fórmulas:
//
//	required = (línea - total) / restante   (0 si total >= línea)
//	current  = total / jugados              (0 si jugados == 0)
//	proyección = total + current*restante, mezclada con la línea durante
//	             los primeros 5 minutos: w = 1 - jugados/5
func ComputeReading(s GameSnapshot) PaceReading {
	total := float64(s.Total())
	clock := float64(s.ClockMinutes) + float64(s.ClockSeconds)/60

	periods, periodMinutes := regulationSplit(s.TotalMinutes)

	var remaining float64
	switch {
	case s.Period <= 0:
		remaining = s.TotalMinutes
	case s.Period >= periods:
		// Último período reglamentario o prórroga: sólo cuenta el reloj.
		remaining = clock
	default:
		remaining = clock + float64(periods-s.Period)*periodMinutes
	}

	length := s.TotalMinutes
	if s.Period > periods {
		length += float64(s.Period-periods) * OvertimeMinutes
	}
	elapsed := length - remaining
	if elapsed < 0 {
		elapsed = 0
	}

	var required float64
	if remaining > 0 && s.PostedTotal > total {
		required = (s.PostedTotal - total) / remaining
	}

	var current float64
	if elapsed > 0 {
		current = total / elapsed
	}

	projected := total + current*remaining
	if elapsed < paceBlendMinutes {
		w := 1 - elapsed/paceBlendMinutes
		projected = s.PostedTotal*w + projected*(1-w)
	}

	return PaceReading{
		Total:            s.Total(),
		MinutesElapsed:   elapsed,
		MinutesRemaining: remaining,
		RequiredPPM:      required,
		CurrentPPM:       current,
		PPMDifference:    current - required,
		ProjectedFinal:   projected,
	}
}
