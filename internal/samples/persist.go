package samples

import (
	"temp_monitor/internal/csvfield"
	"temp_monitor/internal/models"
)

// Persist writes current, min, max and then every bucket's average and
// count, in that order.
func (b *Buffer) Persist() error {
	return b.record.Save(func(w *csvfield.Writer) {
		w.Float(b.current)
		w.Float(b.min)
		w.Float(b.max)
		for _, bk := range b.buckets {
			w.Float(bk.Average)
			w.Int(bk.Count)
		}
	})
}

// Reload restores the buffer from the primary or backup file. It returns
// persist.ErrNoState when nothing was saved; the buffer is left as is.
// Missing or malformed fields fall back to the empty-buffer values. The next
// reading starts a fresh bucket even if it lands in the current index.
func (b *Buffer) Reload() error {
	rd, err := b.record.Load()
	if err != nil {
		return err
	}

	if v, ok := rd.Float(); ok {
		b.current = v
	} else {
		b.current = b.minValid
	}
	if v, ok := rd.Float(); ok {
		b.min = v
	} else {
		b.min = b.maxValid
	}
	if v, ok := rd.Float(); ok {
		b.max = v
	} else {
		b.max = b.minValid
	}

	for i := range b.buckets {
		avg, okAvg := rd.Float()
		count, okCount := rd.Int()
		if !okAvg || !okCount || count <= 0 {
			b.buckets[i] = models.Bucket{}
			continue
		}
		b.buckets[i].Average = avg
		b.buckets[i].Count = count
	}
	b.placed = false
	return nil
}
