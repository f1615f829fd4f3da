// Package metrics exports allocator and file-layer statistics to Prometheus.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/joshuapare/pocketrt/heap"
	"github.com/joshuapare/pocketrt/vfs"
)

const namespace = "pocketrt"

// Snapshot returns current statistics. It is called once per scrape and must
// be safe to call from the scraping goroutine.
type Snapshot func() (heap.Stats, vfs.Stats)

// Collector is a prometheus.Collector over a Snapshot.
type Collector struct {
	snap Snapshot

	arenaBytes  *prometheus.Desc
	freeBytes   *prometheus.Desc
	usedBytes   *prometheus.Desc
	largestFree *prometheus.Desc
	blocks      *prometheus.Desc
	heapOps     *prometheus.Desc
	failed      *prometheus.Desc
	invalid     *prometheus.Desc
	splits      *prometheus.Desc
	coalesces   *prometheus.Desc

	openStreams *prometheus.Desc
	openFDs     *prometheus.Desc
	mappings    *prometheus.Desc
	mappedBytes *prometheus.Desc
	readBytes   *prometheus.Desc
	opens       *prometheus.Desc
	openFails   *prometheus.Desc
}

var _ prometheus.Collector = (*Collector)(nil)

// New returns a collector reading from snap.
func New(snap Snapshot) *Collector {
	d := func(sub, name, help string, labels ...string) *prometheus.Desc {
		return prometheus.NewDesc(prometheus.BuildFQName(namespace, sub, name), help, labels, nil)
	}
	return &Collector{
		snap: snap,

		arenaBytes:  d("heap", "arena_bytes", "Size of the heap arena."),
		freeBytes:   d("heap", "free_bytes", "Bytes in free blocks, headers included."),
		usedBytes:   d("heap", "used_bytes", "Bytes in used blocks, headers included."),
		largestFree: d("heap", "largest_free_bytes", "Size of the largest free block."),
		blocks:      d("heap", "blocks", "Number of blocks by state.", "state"),
		heapOps:     d("heap", "calls_total", "Allocator calls by operation.", "op"),
		failed:      d("heap", "failed_allocs_total", "Allocations that found no fitting block."),
		invalid:     d("heap", "invalid_frees_total", "Free calls rejected as bad pointers."),
		splits:      d("heap", "splits_total", "Blocks split during allocation."),
		coalesces:   d("heap", "coalesces_total", "Merges with a free neighbour by direction.", "direction"),

		openStreams: d("vfs", "open_streams", "Stream handles in use."),
		openFDs:     d("vfs", "open_descriptors", "Descriptors in use."),
		mappings:    d("vfs", "mappings", "Live mapping buffers."),
		mappedBytes: d("vfs", "mapped_bytes", "Bytes held by live mapping buffers."),
		readBytes:   d("vfs", "read_bytes_total", "Bytes copied to callers by source.", "source"),
		opens:       d("vfs", "opens_total", "Successful stream and descriptor opens."),
		openFails:   d("vfs", "open_failures_total", "Rejected stream and descriptor opens."),
	}
}

// Describe implements prometheus.Collector.
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	for _, d := range []*prometheus.Desc{
		c.arenaBytes, c.freeBytes, c.usedBytes, c.largestFree, c.blocks,
		c.heapOps, c.failed, c.invalid, c.splits, c.coalesces,
		c.openStreams, c.openFDs, c.mappings, c.mappedBytes, c.readBytes,
		c.opens, c.openFails,
	} {
		ch <- d
	}
}

// Collect implements prometheus.Collector.
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	hs, fs := c.snap()

	gauge := func(d *prometheus.Desc, v float64, labels ...string) {
		ch <- prometheus.MustNewConstMetric(d, prometheus.GaugeValue, v, labels...)
	}
	counter := func(d *prometheus.Desc, v float64, labels ...string) {
		ch <- prometheus.MustNewConstMetric(d, prometheus.CounterValue, v, labels...)
	}

	gauge(c.arenaBytes, float64(hs.ArenaSize))
	gauge(c.freeBytes, float64(hs.FreeBytes))
	gauge(c.usedBytes, float64(hs.UsedBytes))
	gauge(c.largestFree, float64(hs.LargestFree))
	gauge(c.blocks, float64(hs.FreeBlocks), "free")
	gauge(c.blocks, float64(hs.UsedBlocks), "used")
	counter(c.heapOps, float64(hs.AllocCalls), "alloc")
	counter(c.heapOps, float64(hs.FreeCalls), "free")
	counter(c.heapOps, float64(hs.ReallocCalls), "realloc")
	counter(c.failed, float64(hs.FailedAllocs))
	counter(c.invalid, float64(hs.InvalidFrees))
	counter(c.splits, float64(hs.Splits))
	counter(c.coalesces, float64(hs.CoalesceForward), "forward")
	counter(c.coalesces, float64(hs.CoalesceBackward), "backward")

	gauge(c.openStreams, float64(fs.OpenStreams))
	gauge(c.openFDs, float64(fs.OpenDescriptors))
	gauge(c.mappings, float64(fs.Mappings))
	gauge(c.mappedBytes, float64(fs.MappedBytes))
	counter(c.readBytes, float64(fs.BridgeBytes), "bridge")
	counter(c.readBytes, float64(fs.BufferBytes), "buffer")
	counter(c.opens, float64(fs.Opens))
	counter(c.openFails, float64(fs.OpenFailures))
}
