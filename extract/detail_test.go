package extract

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/use-agent/mapscrape/models"
)

const fullPanel = `<div role="main">
  <h1 class="DUwDvf lfPIob"> Blue   Bottle Coffee </h1>
  <div class="F7nice">
    <span><span aria-hidden="true">4.6</span></span>
    <span><span role="img" aria-label="1,204 reviews">(1,204)</span></span>
  </div>
  <button data-item-id="address" aria-label="Address: 66 Mint St, San Francisco, CA 94103">
    <div class="Io6YTe">66 Mint St, San Francisco, CA 94103</div>
  </button>
  <a data-item-id="authority" href="https://bluebottlecoffee.com/">
    <div class="Io6YTe">bluebottlecoffee.com</div>
  </a>
  <button data-item-id="phone:tel:+14155550100" aria-label="Phone: (415) 555-0100 ">
    <div class="Io6YTe">(415) 555-0100</div>
  </button>
  <script>var x = "noise";</script>
</div>`

func TestExtract_FullPanel(t *testing.T) {
	got, err := Extract(fullPanel)
	if err != nil {
		t.Fatalf("Extract returned error: %v", err)
	}
	want := models.Record{
		Title:       "Blue Bottle Coffee",
		Rating:      "4.6",
		ReviewCount: "1204",
		Phone:       "(415) 555-0100",
		Website:     "bluebottlecoffee.com",
		Address:     "66 Mint St, San Francisco, CA 94103",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Extract mismatch (-want +got):\n%s", diff)
	}
}

func TestExtract_Fallbacks(t *testing.T) {
	// No large rating display, no review label, phone without aria-label,
	// website link without text, address without nested text node.
	panel := `<div>
	  <h1 class="DUwDvf">Tartine</h1>
	  <span class="ceNzKf" role="img" aria-label="4.4 stars "></span>
	  <button jsaction="pane.reviewChart.moreReviews">2,310 reviews</button>
	  <button data-item-id="phone:tel:+14155550123"><div class="Io6YTe">(415) 555-0123</div></button>
	  <a data-item-id="authority" href="https://tartinebakery.com/"></a>
	  <button data-item-id="address" aria-label="ADDRESS:  600 Guerrero St"></button>
	</div>`

	got, err := Extract(panel)
	if err != nil {
		t.Fatalf("Extract returned error: %v", err)
	}
	want := models.Record{
		Title:       "Tartine",
		Rating:      "4.4",
		ReviewCount: "2310",
		Phone:       "(415) 555-0123",
		Website:     "https://tartinebakery.com/",
		Address:     "600 Guerrero St",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Extract mismatch (-want +got):\n%s", diff)
	}
}

func TestExtract_MissingFieldsAreEmptyStrings(t *testing.T) {
	got, err := Extract(`<div><h1 class="DUwDvf">Corner Shop</h1></div>`)
	if err != nil {
		t.Fatalf("Extract returned error: %v", err)
	}
	want := models.Record{Title: "Corner Shop"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Extract mismatch (-want +got):\n%s", diff)
	}
}

func TestExtract_EmptySnapshotIsFault(t *testing.T) {
	_, err := Extract("  \n ")
	if err == nil {
		t.Fatal("expected error for blank snapshot")
	}
	if code := models.CodeOf(err); code != models.ErrCodeExtraction {
		t.Errorf("error code = %q, want %q", code, models.ErrCodeExtraction)
	}
}

func TestExtract_PhoneLabelOnlyYieldsEmptyThenFallback(t *testing.T) {
	// aria-label consisting solely of the label strips to "" and the nested
	// text node is used instead.
	got, err := Extract(`<button data-item-id="phone" aria-label="Phone:"><span class="Io6YTe">020 7946 0000</span></button>`)
	if err != nil {
		t.Fatalf("Extract returned error: %v", err)
	}
	if got.Phone != "020 7946 0000" {
		t.Errorf("Phone = %q, want %q", got.Phone, "020 7946 0000")
	}
}

func TestPanel_TitleAndFingerprint(t *testing.T) {
	a, err := Parse(fullPanel)
	if err != nil {
		t.Fatal(err)
	}
	b, err := Parse(`<div><h1 class="DUwDvf">Blue Bottle Coffee</h1><div class="Io6YTe">1 Ferry Building</div></div>`)
	if err != nil {
		t.Fatal(err)
	}

	if a.Title() != b.Title() {
		t.Fatalf("titles differ: %q vs %q", a.Title(), b.Title())
	}
	if a.Fingerprint() == b.Fingerprint() {
		t.Error("same-title panels with different details should fingerprint differently")
	}
}
