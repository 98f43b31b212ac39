package plasma

import (
	"bytes"
	"encoding/binary"
	"path"
	"sync"

	"github.com/klauspost/compress/zstd"
	"github.com/spf13/afero"
	"github.com/srand/beam/worker/pkg/log"
	"github.com/srand/beam/worker/pkg/store"
	"github.com/srand/beam/worker/pkg/types"
	"github.com/srand/beam/worker/pkg/utils"
)

// A file backed spillover store for objects that outgrow the memory store.
// Payloads are framed as (metadata, data) and compressed with zstd.
// Objects are keyed by their raylet tagged id.
type FileStore struct {
	sync.Mutex

	fs      afero.Fs
	encoder *zstd.Encoder
	decoder *zstd.Decoder
	spilled int64
}

func NewFileStore(fs afero.Fs) (*FileStore, error) {
	encoder, err := zstd.NewWriter(nil)
	if err != nil {
		return nil, err
	}

	decoder, err := zstd.NewReader(nil)
	if err != nil {
		return nil, err
	}

	return &FileStore{
		fs:      fs,
		encoder: encoder,
		decoder: decoder,
	}, nil
}

func (s *FileStore) pathFromId(id types.ObjectID) string {
	hex := id.String()
	return path.Join("objects", hex[:2], hex[2:6], hex[6:])
}

// Store an object under the given id. Satisfies store.StoreInPlasma.
// Write failures are logged, readers will observe the object as missing.
func (s *FileStore) Put(object *store.Object, id types.ObjectID) {
	frame := binary.AppendUvarint(nil, uint64(len(object.Metadata())))
	frame = append(frame, object.Metadata()...)
	frame = binary.AppendUvarint(frame, uint64(len(object.Data())))
	frame = append(frame, object.Data()...)

	compressed := s.encoder.EncodeAll(frame, nil)

	s.Lock()
	defer s.Unlock()

	filepath := s.pathFromId(id)
	if err := s.fs.MkdirAll(path.Dir(filepath), 0777); err != nil {
		log.Errorf("plasma: unable to create %s: %v", path.Dir(filepath), err)
		return
	}

	if err := afero.WriteFile(s.fs, filepath, compressed, 0666); err != nil {
		log.Errorf("plasma: unable to write %s: %v", filepath, err)
		return
	}

	s.spilled++
	log.Debugf("plasma: spilled %s (%s)", id, utils.HumanByteSize(object.Size()))
}

// Read an object back from the spillover store.
func (s *FileStore) Get(id types.ObjectID) (*store.Object, error) {
	s.Lock()
	compressed, err := afero.ReadFile(s.fs, s.pathFromId(id))
	s.Unlock()
	if err != nil {
		return nil, utils.ErrNotFound
	}

	frame, err := s.decoder.DecodeAll(compressed, nil)
	if err != nil {
		return nil, err
	}

	reader := bytes.NewReader(frame)

	metadata, err := readChunk(reader)
	if err != nil {
		return nil, err
	}

	data, err := readChunk(reader)
	if err != nil {
		return nil, err
	}

	return store.NewObject(data, metadata, false), nil
}

func (s *FileStore) Contains(id types.ObjectID) bool {
	s.Lock()
	defer s.Unlock()

	_, err := s.fs.Stat(s.pathFromId(id))
	return err == nil
}

func (s *FileStore) Delete(id types.ObjectID) {
	s.Lock()
	defer s.Unlock()

	s.fs.Remove(s.pathFromId(id))
}

// Total number of objects spilled since start.
func (s *FileStore) Spilled() int64 {
	s.Lock()
	defer s.Unlock()
	return s.spilled
}

func readChunk(reader *bytes.Reader) ([]byte, error) {
	size, err := binary.ReadUvarint(reader)
	if err != nil {
		return nil, err
	}

	if size == 0 {
		return nil, nil
	}

	chunk := make([]byte, size)
	if _, err := reader.Read(chunk); err != nil {
		return nil, err
	}

	return chunk, nil
}
