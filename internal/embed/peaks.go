package embed

// Peak is a local maximum of a continuity curve over the candidate lags.
type Peak struct {
	Lag    int
	Height float64
}

// ExtractPeaks returns the candidate peaks of curve, indexed like lags,
// in increasing lag order. Interior local maxima closer than two samples
// collapse to the taller one, and the first candidate lag is always
// eligible so a featureless curve still nominates the undelayed column.
func ExtractPeaks(curve []float64, lags []int) []Peak {
	if len(curve) == 0 || len(curve) != len(lags) {
		return nil
	}
	var peaks []Peak
	for i := 1; i < len(curve); i++ {
		right := i == len(curve)-1 || curve[i] > curve[i+1]
		if curve[i] > curve[i-1] && right {
			if n := len(peaks); n > 0 && i-indexOf(lags, peaks[n-1].Lag) < 2 {
				if curve[i] > peaks[n-1].Height {
					peaks[n-1] = Peak{lags[i], curve[i]}
				}
				continue
			}
			peaks = append(peaks, Peak{lags[i], curve[i]})
		}
	}
	if len(peaks) == 0 || peaks[0].Lag != lags[0] {
		peaks = append([]Peak{{lags[0], curve[0]}}, peaks...)
	}
	return peaks
}

func indexOf(lags []int, lag int) int {
	for i, l := range lags {
		if l == lag {
			return i
		}
	}
	return -1
}
