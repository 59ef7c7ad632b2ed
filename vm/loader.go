package vm

import (
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// ParseProgram parses comma separated decimal integers. Surrounding
// whitespace, including a trailing newline, is ignored.
func ParseProgram(text string) ([]int64, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, NewParseError(0, "", errors.New("empty program"))
	}

	tokens := strings.Split(text, ",")
	program := make([]int64, len(tokens))
	for i, tok := range tokens {
		tok = strings.TrimSpace(tok)
		v, err := strconv.ParseInt(tok, 10, 64)
		if err != nil {
			return nil, NewParseError(i, tok, err)
		}
		program[i] = v
	}
	return program, nil
}

func LoadProgram(r io.Reader) ([]int64, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Wrap(err, "read program")
	}
	return ParseProgram(string(b))
}

func LoadFile(fileName string) ([]int64, error) {
	f, err := os.Open(fileName)
	if err != nil {
		return nil, errors.Wrap(err, "open program")
	}
	defer f.Close()

	program, err := LoadProgram(f)
	if err != nil {
		return nil, errors.Wrapf(err, "load %s", fileName)
	}
	return program, nil
}

// FormatProgram renders a program back to its text form.
func FormatProgram(program []int64) string {
	var b strings.Builder
	for i, v := range program {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(strconv.FormatInt(v, 10))
	}
	return b.String()
}
