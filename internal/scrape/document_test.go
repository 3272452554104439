package scrape

import "testing"

const samplePage = `<html>
<head><title>Sample Tearsheet</title></head>
<body>
<span class="label">Price (EUR)</span>
<span class="value">12.34</span>
<span class="label">Change</span>
<span class="value">0.5</span>
</body>
</html>`

func TestGoqueryParser(t *testing.T) {
	doc, err := GoqueryParser{}.Parse([]byte(samplePage))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	if got := doc.Title(); got != "Sample Tearsheet" {
		t.Errorf("Title() = %q", got)
	}

	labels := doc.Each("span.label")
	if len(labels) != 2 || labels[0] != "Price (EUR)" || labels[1] != "Change" {
		t.Errorf("Each(span.label) = %v", labels)
	}

	if doc.Text() == "" {
		t.Error("Text() is empty")
	}
}

func TestDisabledParser(t *testing.T) {
	_, err := DisabledParser{}.Parse([]byte(samplePage))
	if err != ErrDisabled {
		t.Errorf("Parse() error = %v, want ErrDisabled", err)
	}
}

func TestEnabled(t *testing.T) {
	if Enabled(DisabledParser{}) {
		t.Error("Enabled(DisabledParser) = true")
	}
	if !Enabled(GoqueryParser{}) {
		t.Error("Enabled(GoqueryParser) = false")
	}
}
