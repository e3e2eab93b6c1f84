package coarsen

// Mark classifies a vertex after C/F splitting.
type Mark int

const (
	Undecided Mark = iota
	Coarse
	Fine
	Isolated
)

// lambdaBuckets is the doubly-linked bucket-list arena described in
// spec.md section 9: vertices are indexed by int, bucketOf[i] is the
// measure (bucket key) of vertex i, and head/tail/next/prev implement an
// intrusive doubly linked list per bucket without any heap-allocated
// node objects. The whole arena is scoped to one CFSplit call.
type lambdaBuckets struct {
	head, tail []int // per-bucket head/tail vertex, -1 if empty
	next, prev []int // per-vertex list pointers, -1 if none
	bucketOf   []int // per-vertex current bucket index, -1 if not in list
	maxBucket  int
}

func newLambdaBuckets(n int) *lambdaBuckets {
	b := &lambdaBuckets{
		head:     make([]int, n+1),
		tail:     make([]int, n+1),
		next:     make([]int, n),
		prev:     make([]int, n),
		bucketOf: make([]int, n),
	}
	for i := range b.head {
		b.head[i] = -1
		b.tail[i] = -1
	}
	for i := range b.next {
		b.next[i] = -1
		b.prev[i] = -1
		b.bucketOf[i] = -1
	}
	return b
}

func (b *lambdaBuckets) insert(v, bucket int) {
	if bucket >= len(b.head) {
		grown := make([]int, bucket+1)
		for i := range grown {
			grown[i] = -1
		}
		copy(grown, b.head)
		b.head = grown
		grown2 := make([]int, bucket+1)
		for i := range grown2 {
			grown2[i] = -1
		}
		copy(grown2, b.tail)
		b.tail = grown2
	}
	b.bucketOf[v] = bucket
	b.prev[v] = -1
	b.next[v] = b.head[bucket]
	if b.head[bucket] != -1 {
		b.prev[b.head[bucket]] = v
	} else {
		b.tail[bucket] = v
	}
	b.head[bucket] = v
	if bucket > b.maxBucket {
		b.maxBucket = bucket
	}
}

func (b *lambdaBuckets) remove(v int) {
	bucket := b.bucketOf[v]
	if bucket < 0 {
		return
	}
	if b.prev[v] != -1 {
		b.next[b.prev[v]] = b.next[v]
	} else {
		b.head[bucket] = b.next[v]
	}
	if b.next[v] != -1 {
		b.prev[b.next[v]] = b.prev[v]
	} else {
		b.tail[bucket] = b.prev[v]
	}
	b.bucketOf[v] = -1
	b.next[v] = -1
	b.prev[v] = -1
}

func (b *lambdaBuckets) move(v, newBucket int) {
	b.remove(v)
	b.insert(v, newBucket)
}

// popMaxBucketHead finds the highest-indexed nonempty bucket, removes and
// returns its head vertex, or -1 if every bucket is empty.
func (b *lambdaBuckets) popMaxBucketHead() int {
	for b.maxBucket >= 0 && b.head[b.maxBucket] == -1 {
		b.maxBucket--
	}
	if b.maxBucket < 0 {
		return -1
	}
	v := b.head[b.maxBucket]
	b.remove(v)
	return v
}

// CFSplit performs the Brandt-Oswald-Stuben first-pass C/F splitting
// followed by the second-pass interpolation-support check, per spec.md
// section 4.4. rowNNZ is the original matrix's per-row non-zero count,
// used to detect isolated vertices (|row| <= 1).
func CFSplit(g *Graph, rowNNZ []int) []Mark {
	n := g.N
	marks := make([]Mark, n)
	st := g.Transpose()
	lambda := make([]int, n)
	for i := range lambda {
		lambda[i] = len(st[i])
	}

	buckets := newLambdaBuckets(n)
	for i := 0; i < n; i++ {
		if rowNNZ[i] <= 1 {
			marks[i] = Isolated
			lambda[i] = 0
			continue
		}
		buckets.insert(i, lambda[i])
	}

	for {
		i := buckets.popMaxBucketHead()
		if i < 0 {
			break
		}
		marks[i] = Coarse

		// Every j with i in S(j) strongly depends on the new C point i
		// and is marked F.
		for _, j := range st[i] {
			if marks[j] != Undecided {
				continue
			}
			marks[j] = Fine
			buckets.remove(j)
			// Promote j's strong neighbors still undecided: they remain
			// candidates to cover F-point j, so their measure rises.
			for _, k := range g.S[j] {
				if marks[k] != Undecided {
					continue
				}
				lambda[k]++
				buckets.move(k, lambda[k])
			}
		}

		// Every j in S(i) (i strongly depends on j) loses a dependent
		// now that i is resolved; if its measure collapses to zero it
		// can never be chosen as a useful coarse point and is promoted
		// to F directly.
		for _, j := range g.S[i] {
			if marks[j] != Undecided {
				continue
			}
			lambda[j]--
			if lambda[j] <= 0 {
				marks[j] = Fine
				buckets.remove(j)
			} else {
				buckets.move(j, lambda[j])
			}
		}
	}

	secondPass(g, marks)
	return marks
}

// secondPass enforces the interpolation-support invariant: every F
// vertex's strong F neighbors must share a common C neighbor with it,
// otherwise one of them is promoted to C. The tie-break reproduces the
// reference's two-step tentative/finalize behavior exactly: on the first
// failure within row i a candidate neighbor is tentatively promoted; the
// promotion is only finalized if a second failure occurs in the same row,
// otherwise the tentative promotion is reverted back to Fine.
func secondPass(g *Graph, marks []Mark) {
	n := g.N
	for i := 0; i < n; i++ {
		if marks[i] != Fine {
			continue
		}
		var tentative int = -1
		failures := 0
		for _, j := range g.S[i] {
			if marks[j] != Fine {
				continue
			}
			if hasCommonCoarse(g, marks, i, j) {
				continue
			}
			failures++
			if failures == 1 {
				tentative = j
				marks[j] = Coarse // tentatively promote
				continue
			}
			// Second failure in this row: finalize the tentative
			// promotion (already applied) and promote the current
			// failing neighbor too, since one promotion cannot fix two
			// independent support gaps.
			if tentative != -1 && marks[j] != Coarse {
				marks[j] = Coarse
			}
		}
		if failures == 1 && tentative != -1 {
			// Only one failure occurred: the tentative promotion was never
			// confirmed by a second failure in this row, so it reverts.
			marks[tentative] = Fine
		}
	}
}

// hasCommonCoarse reports whether F-vertices i and j share a strong
// C-neighbor.
func hasCommonCoarse(g *Graph, marks []Mark, i, j int) bool {
	set := make(map[int]bool, len(g.S[i]))
	for _, k := range g.S[i] {
		if marks[k] == Coarse {
			set[k] = true
		}
	}
	for _, k := range g.S[j] {
		if marks[k] == Coarse && set[k] {
			return true
		}
	}
	return false
}
