package lights

import (
	"github.com/df07/go-transient-raytracer/pkg/core"
)

// SampleLight selects a light uniformly and samples it for direct lighting.
// The returned sample's PDF includes the selection probability.
func SampleLight(lightList []Light, point core.Vec3, normal core.Vec3, sampler core.Sampler) (LightSample, Light, bool) {
	if len(lightList) == 0 {
		return LightSample{}, nil, false
	}

	// Uniform light selection
	selectionPdf := 1.0 / float64(len(lightList))
	index := int(sampler.Get1D() * float64(len(lightList)))
	if index >= len(lightList) {
		index = len(lightList) - 1
	}
	selected := lightList[index]

	sample := selected.Sample(point, normal, sampler.Get2D())
	sample.PDF *= selectionPdf // Combined PDF for MIS calculations

	return sample, selected, true
}

// CalculateLightPDF calculates the combined PDF for a given direction toward
// any light, weighted by the uniform selection probability. Used for MIS when
// a BSDF-sampled ray lands on an emitter.
func CalculateLightPDF(lightList []Light, point, normal, direction core.Vec3) float64 {
	if len(lightList) == 0 {
		return 0.0
	}

	selectionPdf := 1.0 / float64(len(lightList))
	totalPDF := 0.0
	for _, light := range lightList {
		totalPDF += light.PDF(point, normal, direction) * selectionPdf
	}

	return totalPDF
}
