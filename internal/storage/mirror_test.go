package storage

import "testing"

func TestObjectName(t *testing.T) {
	cases := []struct {
		prefix, local, want string
	}{
		{"", "/srv/img/a.min.png", "srv/img/a.min.png"},
		{"thumbs", "/srv/img/a.min.png", "thumbs/srv/img/a.min.png"},
		{"site/assets/", "b.min.jpg", "site/assets/b.min.jpg"},
		{"processed", "./assets/en/../fr/c.min.png", "processed/assets/fr/c.min.png"},
		{"processed", "../../out/d.min.png", "processed/out/d.min.png"},
	}
	for _, tc := range cases {
		if got := ObjectName(tc.prefix, tc.local); got != tc.want {
			t.Fatalf("ObjectName(%q, %q) = %q, want %q", tc.prefix, tc.local, got, tc.want)
		}
	}
}

func TestObjectName_SameBaseNameInDifferentDirs(t *testing.T) {
	en := ObjectName("processed", "assets/en/banner.min.png")
	fr := ObjectName("processed", "assets/fr/banner.min.png")
	if en == fr {
		t.Fatalf("outputs in different directories share key %q", en)
	}
	if en != "processed/assets/en/banner.min.png" || fr != "processed/assets/fr/banner.min.png" {
		t.Fatalf("keys = %q, %q", en, fr)
	}
}
