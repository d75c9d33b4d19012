package daemon

import (
	"context"
	"os"
	"path"
	"time"

	"github.com/twmb/franz-go/pkg/kgo"

	. "sblogz/common"
)

// Kafka ingest.  Each record's key names the traced session and its value
// carries one or more log lines; lines are appended verbatim to the
// session's spool file under the data directory.  The spool file is then an
// ordinary trace log for the HTTP handlers.
//
// This runs on a goroutine for the life of the daemon, just to be a little
// resilient: broker errors are logged and retried by the client, they never
// take the daemon down.

func (dc *DaemonCommand) runKafka() {
	cl, err := kgo.NewClient(
		kgo.SeedBrokers(dc.kafkaBroker),
		kgo.ConsumerGroup("sblogz-ingest"),
		kgo.ConsumeTopics(dc.kafkaTopic),
	)
	if err != nil {
		// The broker could be down; back off before the restart, the query
		// side is unaffected meanwhile.
		Log.Errorf("Kafka: failed to create client: %v", err)
		time.Sleep(30 * time.Second)
		return
	}
	defer cl.Close()
	Log.Infof("Kafka: consuming %s from %s", dc.kafkaTopic, dc.kafkaBroker)

	ctx := context.Background()
	for {
		fetches := cl.PollFetches(ctx)
		if errs := fetches.Errors(); len(errs) > 0 {
			// All errors are retried internally when fetching, but
			// non-retriable errors are returned from polls so that users can
			// notice and take action.
			Log.Errorf("Kafka: SOFT ERROR: failed to fetch data: %v", errs)
		}
		iter := fetches.RecordIter()
		for !iter.Done() {
			record := iter.Next()
			if err := dc.spool(string(record.Key), record.Value); err != nil {
				Log.Errorf("Kafka: SOFT ERROR: spooling %q failed: %v", string(record.Key), err)
			}
		}
		if err := cl.CommitUncommittedOffsets(ctx); err != nil {
			Log.Errorf("Kafka: SOFT ERROR: commit records failed: %v", err)
		}
	}
}

func (dc *DaemonCommand) spool(session string, lines []byte) error {
	if session == "" {
		session = "default"
	}
	fn := path.Join(dc.dataDir, path.Base(session)+".log")
	f, err := os.OpenFile(fn, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return err
	}
	defer f.Close()
	if _, err := f.Write(lines); err != nil {
		return err
	}
	if len(lines) == 0 || lines[len(lines)-1] != '\n' {
		_, err = f.Write([]byte{'\n'})
	}
	return err
}
