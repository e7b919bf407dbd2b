package export

import (
	"bytes"
	"strings"
	"testing"
)

const sampleDocument = "# 1. PRIVACY POLICY\n\nVersion: 1.0\n\n## 2. INTRODUCTION\n\nWe collect the following:\n\n- Personal Information\n- Usage Data\n\nLast Updated: April 5, 2025\n"

func TestParseLines(t *testing.T) {
	lines := ParseLines(sampleDocument)

	var headings, bullets, paragraphs int
	for _, line := range lines {
		switch line.Kind {
		case LineHeading:
			headings++
		case LineBullet:
			bullets++
		case LineParagraph:
			paragraphs++
		}
	}

	if headings != 2 {
		t.Fatalf("expected 2 headings, got %d", headings)
	}
	if bullets != 2 {
		t.Fatalf("expected 2 bullets, got %d", bullets)
	}
	if paragraphs != 3 {
		t.Fatalf("expected 3 paragraphs, got %d", paragraphs)
	}

	first := lines[0]
	if first.Kind != LineHeading || first.Level != 1 || first.Text != "1. PRIVACY POLICY" {
		t.Fatalf("unexpected first line: %+v", first)
	}
}

func TestRenderHTMLPreservesNumbering(t *testing.T) {
	out := string(RenderHTML(sampleDocument, Options{Title: "Acme Inc Privacy Policy"}))

	for _, want := range []string{
		"<h1>1. PRIVACY POLICY</h1>",
		"<h2>2. INTRODUCTION</h2>",
		"<li>Personal Information</li>",
		"<li>Usage Data</li>",
		"<p>Last Updated: April 5, 2025</p>",
		"<title>Acme Inc Privacy Policy</title>",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("html output missing %q\n%s", want, out)
		}
	}

	if strings.Contains(out, WatermarkText) {
		t.Fatal("unexpected watermark without the watermark option")
	}
}

func TestRenderHTMLWatermark(t *testing.T) {
	out := string(RenderHTML(sampleDocument, Options{Watermark: true}))
	if !strings.Contains(out, WatermarkText) {
		t.Fatal("expected watermark banner")
	}
}

func TestRenderHTMLEscapesContent(t *testing.T) {
	out := string(RenderHTML("## 2. <script>alert(1)</script>\n", Options{}))
	if strings.Contains(out, "<script>") {
		t.Fatal("expected heading content to be escaped")
	}
}

func TestRenderHTMLBulletGrouping(t *testing.T) {
	out := string(RenderHTML("- one\n- two\n\n- three\n", Options{}))
	if strings.Count(out, "<ul>") != 2 {
		t.Fatalf("expected two lists, got %d\n%s", strings.Count(out, "<ul>"), out)
	}
}

func TestRenderPDF(t *testing.T) {
	out, err := RenderPDF(sampleDocument, Options{})
	if err != nil {
		t.Fatalf("pdf render failed: %v", err)
	}
	if !bytes.HasPrefix(out, []byte("%PDF")) {
		t.Fatal("expected PDF output")
	}

	watermarked, err := RenderPDF(sampleDocument, Options{Watermark: true})
	if err != nil {
		t.Fatalf("watermarked pdf render failed: %v", err)
	}
	if len(watermarked) <= len(out) {
		t.Fatal("expected watermarked PDF to carry extra content")
	}
}
