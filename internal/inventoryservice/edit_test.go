package inventoryservice

import (
	"errors"
	"strings"
	"testing"

	"github.com/eivindn/inventar/internal/apperr"
)

const editFixture = `# ID:Garasje Garasjen

## ID:A23 Vinterutstyr
* Langrennsski
* Skistaver
  * Reservetrinser

## ID:B7 Verktøy
* Hammer
`

func TestAppendItemLine(t *testing.T) {
	out, err := appendItemLine(editFixture, "A23", "Ullgenser")
	if err != nil {
		t.Fatal(err)
	}
	want := `## ID:A23 Vinterutstyr
* Langrennsski
* Skistaver
  * Reservetrinser
* Ullgenser

## ID:B7 Verktøy`
	if !strings.Contains(out, want) {
		t.Errorf("bullet not inserted before blank line:\n%s", out)
	}
}

func TestAppendItemLineLastSection(t *testing.T) {
	out, err := appendItemLine(editFixture, "B7", "Sag")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasSuffix(strings.TrimRight(out, "\n"), "* Sag") {
		t.Errorf("bullet not appended at end:\n%s", out)
	}
}

func TestAppendItemLineUnknownContainer(t *testing.T) {
	_, err := appendItemLine(editFixture, "X99", "Ting")
	if !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestRemoveItemLineTakesIndentedChildren(t *testing.T) {
	out, removed, err := removeItemLine(editFixture, "A23", "skistaver")
	if err != nil {
		t.Fatal(err)
	}
	if removed != "Skistaver" {
		t.Errorf("removed = %q", removed)
	}
	if strings.Contains(out, "Reservetrinser") {
		t.Errorf("indented child bullet survived:\n%s", out)
	}
	if !strings.Contains(out, "* Langrennsski") {
		t.Errorf("sibling bullet lost:\n%s", out)
	}
}

func TestAppendItemLineSkipsReservedSections(t *testing.T) {
	// The numbering section quotes a heading-like "## A23" line; edits
	// aimed at the real container must land under its ID: heading.
	source := `# Nummereringsregime
Bokser navngis slik:
## A23
betyr hylle A, boks 23.

# ID:Garasje Garasjen

## ID:A23 Vinterutstyr
* Langrennsski
`
	out, err := appendItemLine(source, "A23", "Ullgenser")
	if err != nil {
		t.Fatal(err)
	}
	want := `## ID:A23 Vinterutstyr
* Langrennsski
* Ullgenser`
	if !strings.Contains(out, want) {
		t.Errorf("bullet not inserted under the real container:\n%s", out)
	}
	if strings.Contains(out, "## A23\n* Ullgenser") {
		t.Errorf("bullet landed inside the reserved section:\n%s", out)
	}
}

func TestRemoveItemLineIndentedBullet(t *testing.T) {
	out, removed, err := removeItemLine(editFixture, "A23", "reservetrinser")
	if err != nil {
		t.Fatal(err)
	}
	if removed != "Reservetrinser" {
		t.Errorf("removed = %q", removed)
	}
	if strings.Contains(out, "Reservetrinser") {
		t.Errorf("indented bullet survived:\n%s", out)
	}
	if !strings.Contains(out, "* Skistaver") {
		t.Errorf("parent bullet lost:\n%s", out)
	}
}

func TestRemoveItemLineScopedToSection(t *testing.T) {
	// "Hammer" exists only in B7; asking A23 must not touch it.
	_, _, err := removeItemLine(editFixture, "A23", "hammer")
	if !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
