package embeddings

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"
)

var ErrInvalidHeader = errors.New("invalid word2vec header")

// LoadFile loads a pretrained table from disk. source is SourceWord2VecBinary
// or SourceText.
func LoadFile(path, source string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open embeddings: %w", err)
	}
	defer f.Close()

	switch source {
	case SourceWord2VecBinary:
		return LoadWord2VecBinary(f)
	case SourceText:
		return LoadText(f)
	default:
		return nil, fmt.Errorf("unknown embedding source: %s", source)
	}
}

// LoadWord2VecBinary reads the binary word2vec format: a "<count> <dim>" header
// line followed by count entries of "<word> " and dim little-endian float32s.
func LoadWord2VecBinary(r io.Reader) (*Table, error) {
	br := bufio.NewReaderSize(r, 1<<20)

	header, err := br.ReadString('\n')
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	count, dim, ok := parseHeader(header)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrInvalidHeader, strings.TrimSpace(header))
	}

	t := NewTable(dim)
	t.vectors = make(map[string][]float32, count)

	// One backing array keeps the table to a single large allocation
	backing := make([]float32, count*dim)
	buf := make([]byte, 4*dim)

	for i := 0; i < count; i++ {
		word, err := readWord(br)
		if err != nil {
			return nil, fmt.Errorf("read word %d: %w", i, err)
		}
		if _, err := io.ReadFull(br, buf); err != nil {
			return nil, fmt.Errorf("read vector for %q: %w", word, err)
		}

		vec := backing[i*dim : (i+1)*dim : (i+1)*dim]
		for j := range vec {
			vec[j] = math.Float32frombits(binary.LittleEndian.Uint32(buf[4*j:]))
		}
		if err := t.add(word, vec); err != nil {
			return nil, err
		}
	}

	return t, nil
}

// LoadText reads whitespace separated "<word> <v1> ... <vd>" lines. An
// optional word2vec "<count> <dim>" header line is skipped (GloVe files have none).
func LoadText(r io.Reader) (*Table, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)

	var t *Table
	line := 0
	for sc.Scan() {
		line++
		fields := strings.Fields(sc.Text())
		if len(fields) < 2 {
			continue
		}
		if line == 1 {
			if _, _, ok := parseHeader(sc.Text()); ok {
				continue
			}
		}

		vec := make([]float32, len(fields)-1)
		for i, val := range fields[1:] {
			f, err := strconv.ParseFloat(val, 32)
			if err != nil {
				return nil, fmt.Errorf("line %d: parse %q: %w", line, val, err)
			}
			vec[i] = float32(f)
		}

		if t == nil {
			t = NewTable(len(vec))
		}
		if err := t.add(fields[0], vec); err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("scan embeddings: %w", err)
	}

	if t == nil {
		return NewTable(0), nil
	}
	return t, nil
}

func parseHeader(line string) (count, dim int, ok bool) {
	fields := strings.Fields(line)
	if len(fields) != 2 {
		return 0, 0, false
	}
	count, err := strconv.Atoi(fields[0])
	if err != nil || count < 0 {
		return 0, 0, false
	}
	dim, err = strconv.Atoi(fields[1])
	if err != nil || dim <= 0 {
		return 0, 0, false
	}
	return count, dim, true
}

// readWord reads bytes up to the next space, skipping the newline that some
// writers put after each vector.
func readWord(br *bufio.Reader) (string, error) {
	var word []byte
	for {
		b, err := br.ReadByte()
		if err != nil {
			return "", err
		}
		if b == ' ' {
			break
		}
		if b == '\n' && len(word) == 0 {
			continue
		}
		word = append(word, b)
	}
	return string(word), nil
}
