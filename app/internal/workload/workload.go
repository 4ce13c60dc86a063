// Package workload отправляет сгенерированных пользователей на /addRow.
package workload

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// Options задаёт параметры прогона.
type Options struct {
	URL   string
	Count int
	// первый id, дальше по возрастанию на единицу
	StartID int
	Delay   time.Duration
}

// Result - итог прогона.
type Result struct {
	Sent   int
	Failed int
}

// Payload - тело /addRow для одного пользователя.
func Payload(id int) map[string]string {
	return map[string]string{
		"id":   strconv.Itoa(id),
		"name": "user-" + strconv.Itoa(id),
	}
}

func post(ctx context.Context, client *http.Client, url string, body []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url+"/addRow", bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		b, _ := io.ReadAll(resp.Body)
		return errors.Errorf("addRow failed: status=%d, body=%s", resp.StatusCode, bytes.TrimSpace(b))
	}
	return nil
}

// Run отправляет opts.Count пользователей. Ошибка по строке пишется в
// лог и учитывается, досрочно прогон останавливает только отмена ctx.
func Run(ctx context.Context, client *http.Client, opts Options) (Result, error) {
	var res Result
	for i := 0; i < opts.Count; i++ {
		if err := ctx.Err(); err != nil {
			return res, err
		}

		id := opts.StartID + i
		body, err := json.Marshal(Payload(id))
		if err != nil {
			return res, errors.Wrap(err, "marshal payload")
		}

		if err := post(ctx, client, opts.URL, body); err != nil {
			logrus.WithField("id", id).WithError(err).Warn("Row not added")
			res.Failed++
		} else {
			res.Sent++
			logrus.Debugf("Sent %d/%d", i+1, opts.Count)
		}

		if opts.Delay > 0 {
			select {
			case <-ctx.Done():
				return res, ctx.Err()
			case <-time.After(opts.Delay):
			}
		}
	}
	return res, nil
}
