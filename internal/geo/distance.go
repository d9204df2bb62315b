package geo

import "math"

const (
	// WGS-84 ellipsoid.
	semiMajorAxis = 6378137.0
	flattening    = 1 / 298.257223563
	semiMinorAxis = (1 - flattening) * semiMajorAxis

	metersPerMile = 1609.344
	// Mean earth radius in miles, used only by the spherical fallback.
	meanRadiusMiles = 3958.7613

	maxIterations = 200
	tolerance     = 1e-12
)

// Distance returns the geodesic distance between a and b in statute miles.
//
// It solves the inverse problem on the WGS-84 ellipsoid with Vincenty's
// formulae. For nearly antipodal points, where the iteration does not
// converge, the great-circle distance on a sphere is returned instead.
func Distance(a, b Coordinates) float64 {
	if miles, ok := vincenty(a, b); ok {
		return miles
	}
	return haversine(a, b)
}

func vincenty(a, b Coordinates) (float64, bool) {
	l := radians(b.Lon - a.Lon)
	u1 := math.Atan((1 - flattening) * math.Tan(radians(a.Lat)))
	u2 := math.Atan((1 - flattening) * math.Tan(radians(b.Lat)))

	sinU1, cosU1 := math.Sincos(u1)
	sinU2, cosU2 := math.Sincos(u2)

	var (
		sinSigma, cosSigma, sigma float64
		cosSqAlpha, cos2SigmaM    float64
	)

	lambda := l
	converged := false
	for i := 0; i < maxIterations; i++ {
		sinLambda, cosLambda := math.Sincos(lambda)

		sinSigma = math.Sqrt(
			(cosU2*sinLambda)*(cosU2*sinLambda) +
				(cosU1*sinU2-sinU1*cosU2*cosLambda)*(cosU1*sinU2-sinU1*cosU2*cosLambda),
		)
		if sinSigma == 0 {
			// coincident points
			return 0, true
		}

		cosSigma = sinU1*sinU2 + cosU1*cosU2*cosLambda
		sigma = math.Atan2(sinSigma, cosSigma)

		sinAlpha := cosU1 * cosU2 * sinLambda / sinSigma
		cosSqAlpha = 1 - sinAlpha*sinAlpha

		// Both points on the equator.
		cos2SigmaM = 0
		if cosSqAlpha != 0 {
			cos2SigmaM = cosSigma - 2*sinU1*sinU2/cosSqAlpha
		}

		c := flattening / 16 * cosSqAlpha * (4 + flattening*(4-3*cosSqAlpha))
		prev := lambda
		lambda = l + (1-c)*flattening*sinAlpha*
			(sigma+c*sinSigma*(cos2SigmaM+c*cosSigma*(-1+2*cos2SigmaM*cos2SigmaM)))

		if math.Abs(lambda-prev) < tolerance {
			converged = true
			break
		}
	}

	if !converged {
		return 0, false
	}

	uSq := cosSqAlpha * (semiMajorAxis*semiMajorAxis - semiMinorAxis*semiMinorAxis) / (semiMinorAxis * semiMinorAxis)
	bigA := 1 + uSq/16384*(4096+uSq*(-768+uSq*(320-175*uSq)))
	bigB := uSq / 1024 * (256 + uSq*(-128+uSq*(74-47*uSq)))
	deltaSigma := bigB * sinSigma * (cos2SigmaM + bigB/4*(cosSigma*(-1+2*cos2SigmaM*cos2SigmaM)-
		bigB/6*cos2SigmaM*(-3+4*sinSigma*sinSigma)*(-3+4*cos2SigmaM*cos2SigmaM)))

	meters := semiMinorAxis * bigA * (sigma - deltaSigma)

	return meters / metersPerMile, true
}

func haversine(a, b Coordinates) float64 {
	phi1 := radians(a.Lat)
	phi2 := radians(b.Lat)
	dPhi := phi2 - phi1
	dLambda := radians(b.Lon - a.Lon)

	h := math.Sin(dPhi/2)*math.Sin(dPhi/2) +
		math.Cos(phi1)*math.Cos(phi2)*math.Sin(dLambda/2)*math.Sin(dLambda/2)

	return 2 * meanRadiusMiles * math.Asin(math.Min(1, math.Sqrt(h)))
}

func radians(deg float64) float64 {
	return deg * math.Pi / 180
}
