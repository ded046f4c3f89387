package containerizer

import (
	"context"
	"sort"
)

// Report is the result of a full engine check: daemon, shared network and
// every scenario image.
type Report struct {
	Binary    string        `json:"binary" yaml:"binary"`
	Available bool          `json:"available" yaml:"available"`
	Version   string        `json:"version,omitempty" yaml:"version,omitempty"`
	Error     string        `json:"error,omitempty" yaml:"error,omitempty"`
	Network   NetworkStatus `json:"network" yaml:"network"`
	Images    []ImageStatus `json:"images" yaml:"images"`
}

// NetworkStatus reports whether the shared session network exists.
type NetworkStatus struct {
	Name   string `json:"name" yaml:"name"`
	Exists bool   `json:"exists" yaml:"exists"`
	Error  string `json:"error,omitempty" yaml:"error,omitempty"`
}

// ImageStatus reports whether one image is present locally.
type ImageStatus struct {
	Image   string `json:"image" yaml:"image"`
	Present bool   `json:"present" yaml:"present"`
	Error   string `json:"error,omitempty" yaml:"error,omitempty"`
}

// Healthy reports whether sessions could start for every checked image.
func (r Report) Healthy() bool {
	if !r.Available {
		return false
	}
	for _, img := range r.Images {
		if !img.Present {
			return false
		}
	}
	return true
}

// MissingImages lists the images that are not present locally.
func (r Report) MissingImages() []string {
	var missing []string
	for _, img := range r.Images {
		if !img.Present {
			missing = append(missing, img.Image)
		}
	}
	return missing
}

// Check inspects the engine without changing anything: the network is not
// created and no image is pulled. When the daemon is unreachable the network
// and images are not checked.
func (p *Probe) Check(ctx context.Context, binary, network string, images []string) Report {
	report := Report{Binary: binary, Network: NetworkStatus{Name: network}}

	vctx, cancel := context.WithTimeout(ctx, p.timeout)
	version, err := p.engine.Version(vctx)
	cancel()
	if err != nil {
		report.Error = err.Error()
		return report
	}
	report.Available = true
	report.Version = version

	nctx, cancel := context.WithTimeout(ctx, p.timeout)
	exists, err := p.engine.NetworkExists(nctx, network)
	cancel()
	report.Network.Exists = exists
	if err != nil {
		report.Network.Error = err.Error()
	}

	sorted := append([]string(nil), images...)
	sort.Strings(sorted)
	for _, image := range sorted {
		status := ImageStatus{Image: image}
		present, err := p.ImageExists(ctx, image)
		status.Present = present
		if err != nil {
			status.Error = err.Error()
		}
		report.Images = append(report.Images, status)
	}
	return report
}
