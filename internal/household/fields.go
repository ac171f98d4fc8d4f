package household

import (
	"errors"

	"kkjson/internal/coerce"
	"kkjson/internal/document"
	"kkjson/internal/logging"
	"kkjson/internal/table"
)

// Coercion turns a raw cell into its output value. A non-nil error makes
// the caller substitute the mapping's fallback.
type Coercion func(raw string) (any, error)

// Mapping binds one normalized source column to one output key.
type Mapping struct {
	Source string
	Target string
	// Coerce is nil for plain string fields.
	Coerce Coercion
	// Default replaces the value when Coerce fails.
	Default any
	// Fallback, when set, computes the replacement from the raw cell
	// instead of using Default.
	Fallback func(raw string) any
	// Optional fields are emitted only when Source is a table column.
	Optional bool
}

var (
	birthDate Coercion = func(raw string) (any, error) {
		s, err := coerce.BirthDate(raw)
		if err != nil {
			return nil, err
		}
		return s, nil
	}
	timestamp Coercion = func(raw string) (any, error) {
		s, err := coerce.Timestamp(raw)
		if err != nil {
			return nil, err
		}
		return s, nil
	}
	version Coercion = func(raw string) (any, error) {
		v, err := coerce.Version(raw)
		if err != nil {
			return nil, err
		}
		return v, nil
	}
	nullable Coercion = func(raw string) (any, error) {
		return coerce.NullableString(raw), nil
	}
	verbatim = func(raw string) any { return raw }
)

// AddressFields are read from the first row of a household.
var AddressFields = []Mapping{
	{Source: "ALAMAT", Target: "alamat"},
	{Source: "RT", Target: "rt"},
	{Source: "RW", Target: "rw"},
	{Source: "KELURAHAN", Target: "kelurahan"},
	{Source: "KECAMATAN", Target: "kecamatan"},
	{Source: "KABUPATEN", Target: "kabupaten"},
	{Source: "PROVINSI", Target: "provinsi"},
	{Source: "KODE POS", Target: "kodePos"},
}

// MemberFields build one member document per row.
var MemberFields = []Mapping{
	{Source: "NIK", Target: "nik"},
	{Source: "NAMA", Target: DefaultNameField},
	{Source: "JENIS KELAMIN", Target: "jenisKelamin"},
	{Source: "TEMPAT LAHIR", Target: "tempatLahir"},
	{Source: "TANGGAL LAHIR", Target: "tanggalLahir", Coerce: birthDate, Default: nil},
	{Source: "AGAMA", Target: "agama"},
	{Source: "PENDIDIKAN", Target: "pendidikan"},
	{Source: "PEKERJAAN", Target: "jenisPekerjaan"},
	{Source: "STATUS PERNIKAHAN", Target: "statusPernikahan"},
	{Source: "HUBUNGAN KELUARGA", Target: "statusHubunganKeluarga"},
	{Source: "KEWARGANEGARAAN", Target: "kewarganegaraan"},
	{Source: "WALLET", Target: "wallet", Coerce: nullable, Default: nil},
}

// MetadataFields describe an upload and only exist in some exports.
var MetadataFields = []Mapping{
	{Source: "DIUNGGAH OLEH", Target: "diunggahOleh", Optional: true},
	{Source: "WAKTU UPLOAD", Target: "waktuUpload", Coerce: timestamp, Fallback: verbatim, Optional: true},
	{Source: "VERSI", Target: "versi", Coerce: version, Default: 0, Optional: true},
}

// Apply evaluates fields against r in order and sets each result on obj.
// Coercion failures never propagate; they are logged, reported to obs
// and replaced by the mapping's fallback.
func Apply(obj *document.Object, fields []Mapping, r table.Row, obs Observer) {
	for _, m := range fields {
		raw, present := r.Lookup(m.Source)
		if m.Optional && !present {
			continue
		}
		if m.Coerce == nil {
			obj.Set(m.Target, raw)
			continue
		}
		v, err := m.Coerce(raw)
		if err != nil {
			if !errors.Is(err, coerce.ErrEmpty) {
				logging.L().Debug("field fallback", "field", m.Target, "raw", raw, "err", err)
				if obs != nil {
					obs.Fallback(m.Target)
				}
			}
			if m.Fallback != nil {
				v = m.Fallback(raw)
			} else {
				v = m.Default
			}
		}
		obj.Set(m.Target, v)
	}
}

// renameTarget returns a copy of fields with from renamed to to.
func renameTarget(fields []Mapping, from, to string) []Mapping {
	out := make([]Mapping, len(fields))
	copy(out, fields)
	for i := range out {
		if out[i].Target == from {
			out[i].Target = to
		}
	}
	return out
}
