package service

import (
	"context"
	"fmt"
	"strconv"

	"sifs_backend/internals/features/certificates/scene"
	"sifs_backend/internals/features/certificates/verification/model"
)

// ImageProbe reports whether the template artwork can be loaded.
type ImageProbe interface {
	Probe(ctx context.Context, src string) error
}

// Scene is the laid-out certificate for one verification.
type Scene struct {
	Root     *scene.Element `json:"root"`
	Reserved Box            `json:"reserved"`
	Native   Box            `json:"native"`
	Overlays []Overlay      `json:"overlays"`
	View     ViewState      `json:"view"`
}

// BuildScene lays out the certificate node at its native size, visually scaled.
// Overlays are attached only when the view state allows them.
func BuildScene(v model.Verification, view ViewState) *Scene {
	o := v.Template.Orientation
	w, h := o.NativeSize()

	root := &scene.Element{
		Tag:  "div",
		Role: scene.RoleCertificate,
		Style: scene.Style{
			"position":         "relative",
			"width":            px(float64(w)),
			"height":           px(float64(h)),
			"overflow":         "hidden",
			"background-color": "#ffffff",
			"transform":        fmt.Sprintf("scale(%s)", num(view.Scale)),
			"transform-origin": "top left",
		},
	}
	root.Append(&scene.Element{
		Tag:  "img",
		Role: scene.RoleTemplate,
		Src:  v.Template.ImageURL,
		Style: scene.Style{
			"position":   "absolute",
			"top":        "0",
			"left":       "0",
			"width":      "100%",
			"height":     "100%",
			"object-fit": "cover",
		},
	})

	overlays := PlaceOverlays(v.Certificate, v.Template)
	if view.OverlaysVisible() {
		for _, ov := range overlays {
			root.Append(overlayElement(ov))
		}
	}

	return &Scene{
		Root:     root,
		Reserved: ReservedBox(view.Scale, o),
		Native:   NativeBox(o),
		Overlays: overlays,
		View:     view,
	}
}

// Preview measures, probes the artwork and builds the scene in one go.
func Preview(ctx context.Context, probe ImageProbe, v model.Verification, containerWidthPx float64) *Scene {
	view := NewViewState(ComputeScale(containerWidthPx, v.Template.Orientation))
	if probe == nil {
		view.ImageLoaded()
	} else if err := probe.Probe(ctx, v.Template.ImageURL); err != nil {
		view.ImageFailed()
	} else {
		view.ImageLoaded()
	}
	return BuildScene(v, view)
}

func overlayElement(ov Overlay) *scene.Element {
	st := scene.Style{
		"position":    "absolute",
		"color":       ov.Style.Color,
		"font-size":   px(ov.Style.FontSizePx),
		"font-weight": strconv.Itoa(ov.Style.FontWeight),
		"font-family": ov.Style.FontFamily,
		"white-space": "nowrap",
	}
	switch ov.HAnchor {
	case AnchorCenter:
		st["left"] = pct(ov.XPct)
		st["transform"] = "translateX(-50%)"
		st["text-align"] = "center"
	case AnchorRight:
		st["right"] = pct(ov.XPct)
		st["text-align"] = "right"
	default:
		st["left"] = pct(ov.XPct)
		st["text-align"] = "left"
	}
	if ov.VAnchor == AnchorBottom {
		st["bottom"] = pct(ov.YPct)
	} else {
		st["top"] = pct(ov.YPct)
	}
	if ov.Style.TextShadow != "" {
		st["text-shadow"] = ov.Style.TextShadow
	}
	if ov.Style.Underline {
		st["text-decoration"] = "underline"
	}
	return &scene.Element{Tag: "span", Role: ov.Role, Text: ov.Text, Style: st}
}

func num(f float64) string { return strconv.FormatFloat(f, 'f', -1, 64) }
func px(f float64) string { return num(f) + "px" }
func pct(f float64) string { return num(f) + "%" }
