package domain

// Kind of stored document. The value is also the filename prefix.
type Kind string

const (
	KindCV     Kind = "cv"
	KindPhoto  Kind = "photo"
	KindFiscal Kind = "fiscal"
)

var segments = map[Kind]string{
	KindCV:     "cv",
	KindPhoto:  "photo",
	KindFiscal: "fiscal-document",
}

// KindFromSegment maps a route segment (cv, photo, fiscal-document) to a Kind.
func KindFromSegment(segment string) (Kind, bool) {
	for kind, s := range segments {
		if s == segment {
			return kind, true
		}
	}
	return "", false
}

func (k Kind) Segment() string {
	return segments[k]
}

// Cacheable reports whether clients may keep a copy of files of k.
func (k Kind) Cacheable() bool {
	return k == KindPhoto
}

// CacheControl returns the Cache-Control header served with files of k.
func (k Kind) CacheControl() string {
	if k.Cacheable() {
		return "private, max-age=3600"
	}
	return "private, no-store"
}

// OwnerRole is the role of the record that owns files of k.
func (k Kind) OwnerRole() Role {
	if k == KindFiscal {
		return RoleCompany
	}
	return RoleStudent
}

// Accepts reports whether a sniffed MIME type may be stored as k.
func (k Kind) Accepts(mime string) bool {
	switch k {
	case KindPhoto:
		return mime == "image/png" || mime == "image/jpeg" || mime == "image/webp"
	case KindCV, KindFiscal:
		return mime == "application/pdf"
	}
	return false
}
