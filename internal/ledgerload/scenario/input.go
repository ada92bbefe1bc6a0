package scenario

import (
	"bufio"
	"os"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/ledgerload/ledgerload/internal/common/ledgererrors"
)

// ReadIDFile reads one numeric id per line. Blank lines are skipped; a file with no ids is an error.
func ReadIDFile(path string) ([]int64, error) {
	if path == "" {
		return nil, errors.WithStack(&ledgererrors.ErrInvalidArgument{
			Name: "path", Value: path, Message: "an id file is required",
		})
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "opening id file %s", path)
	}
	defer f.Close()

	var ids []int64
	scanner := bufio.NewScanner(f)
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}
		id, err := strconv.ParseInt(text, 10, 64)
		if err != nil {
			return nil, errors.WithStack(&ledgererrors.ErrInvalidArgument{
				Name:    path + ":" + strconv.Itoa(line),
				Value:   text,
				Message: "expected a numeric id",
			})
		}
		ids = append(ids, id)
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrapf(err, "reading id file %s", path)
	}
	if len(ids) == 0 {
		return nil, errors.WithStack(&ledgererrors.ErrInvalidArgument{
			Name: "path", Value: path, Message: "id file contains no ids",
		})
	}
	return ids, nil
}

func invalidCount(n int) error {
	return errors.WithStack(&ledgererrors.ErrInvalidArgument{
		Name: "numberOfAccounts", Value: n, Message: "must be at least 1",
	})
}
