package catalog

import (
	"github.com/2x3systems/hexpack/canon"
	"github.com/2x3systems/hexpack/hexpack"
	"github.com/gogo/protobuf/proto"
	"github.com/pkg/errors"
)

func appendScope(key []byte, scope string) []byte {
	buf := proto.NewBuffer(key)
	buf.EncodeStringBytes(scope)
	return buf.Bytes()
}

func appendKey(key []byte, scope, bucket string, fp canon.Fingerprint) []byte {
	buf := proto.NewBuffer(key)
	buf.EncodeStringBytes(scope)
	buf.EncodeStringBytes(bucket)
	return append(buf.Bytes(), fp.Bytes()...)
}

// nextField splits off one length-prefixed field.
func nextField(b []byte) (field, rest []byte, err error) {
	n, sz := proto.DecodeVarint(b)
	if sz == 0 || n > uint64(len(b)-sz) {
		return nil, nil, errors.Wrap(hexpack.ErrUnmarshal, "bad length prefix")
	}
	end := sz + int(n)
	return b[sz:end], b[end:], nil
}

func parseKey(key []byte) (*Record, error) {
	scope, rest, err := nextField(key)
	if err != nil {
		return nil, err
	}
	bucket, rest, err := nextField(rest)
	if err != nil {
		return nil, err
	}
	fp, err := canon.FingerprintFromBytes(rest)
	if err != nil {
		return nil, err
	}
	return &Record{
		Scope:       string(scope),
		Bucket:      string(bucket),
		Fingerprint: fp,
	}, nil
}

func (st *CatalogState) Marshal() []byte {
	buf := proto.NewBuffer(make([]byte, 0, 16))
	buf.EncodeVarint(st.MajorVers)
	buf.EncodeVarint(st.MinorVers)
	buf.EncodeVarint(st.NumEntries)
	return buf.Bytes()
}

func (st *CatalogState) Unmarshal(val []byte) error {
	buf := proto.NewBuffer(val)
	for _, field := range []*uint64{&st.MajorVers, &st.MinorVers, &st.NumEntries} {
		x, err := buf.DecodeVarint()
		if err != nil {
			return errors.Wrap(hexpack.ErrUnmarshal, "catalog state")
		}
		*field = x
	}
	return nil
}

func (rec *Record) marshalValue() []byte {
	buf := proto.NewBuffer(make([]byte, 0, 8+2*(len(rec.Vector)+len(rec.Beads))))
	buf.EncodeVarint(rec.Count)
	buf.EncodeVarint(uint64(len(rec.Vector)))
	for _, v := range rec.Vector {
		buf.EncodeZigzag64(uint64(int64(v)))
	}
	buf.EncodeVarint(uint64(len(rec.Beads)))
	for _, b := range rec.Beads {
		buf.EncodeVarint(uint64(b))
	}
	return buf.Bytes()
}

// unmarshalValue decodes a value written by marshalValue.  val is not retained.
func (rec *Record) unmarshalValue(val []byte) error {
	buf := proto.NewBuffer(val)

	var err error
	if rec.Count, err = buf.DecodeVarint(); err != nil {
		return errors.Wrap(hexpack.ErrUnmarshal, "record count")
	}

	if rec.Vector, err = decodeInts(buf, len(val), true); err != nil {
		return errors.Wrap(err, "record vector")
	}
	if rec.Beads, err = decodeInts(buf, len(val), false); err != nil {
		return errors.Wrap(err, "record beads")
	}
	return nil
}

func decodeInts(buf *proto.Buffer, maxLen int, zigzag bool) ([]int, error) {
	n, err := buf.DecodeVarint()
	if err != nil || n > uint64(maxLen) {
		return nil, hexpack.ErrUnmarshal
	}
	out := make([]int, n)
	for i := range out {
		var x uint64
		if zigzag {
			x, err = buf.DecodeZigzag64()
		} else {
			x, err = buf.DecodeVarint()
		}
		if err != nil {
			return nil, hexpack.ErrUnmarshal
		}
		out[i] = int(int64(x))
	}
	return out, nil
}
