package analytics

import "math"

// Noise is the label assigned to points outside every cluster.
const Noise = -1

// DBSCAN runs density-based clustering over the given points with Euclidean
// distance. A point is a core point when at least minPts points (itself
// included) lie within eps. Returns one label per input point: cluster ids
// counting up from 0, or Noise. The scan order is the input order, so the
// labeling is deterministic.
func DBSCAN(points [][]float64, eps float64, minPts int) []int {
	labels := make([]int, len(points))
	for i := range labels {
		labels[i] = Noise
	}
	visited := make([]bool, len(points))

	cluster := 0
	for i := range points {
		if visited[i] {
			continue
		}
		visited[i] = true

		neighbors := regionQuery(points, i, eps)
		if len(neighbors) < minPts {
			continue
		}

		labels[i] = cluster
		// Expand the cluster breadth-first over density-reachable points.
		for q := 0; q < len(neighbors); q++ {
			j := neighbors[q]
			if labels[j] == Noise {
				labels[j] = cluster
			}
			if visited[j] {
				continue
			}
			visited[j] = true
			labels[j] = cluster
			next := regionQuery(points, j, eps)
			if len(next) >= minPts {
				neighbors = append(neighbors, next...)
			}
		}
		cluster++
	}
	return labels
}

func regionQuery(points [][]float64, i int, eps float64) []int {
	var neighbors []int
	for j := range points {
		if euclidean(points[i], points[j]) <= eps {
			neighbors = append(neighbors, j)
		}
	}
	return neighbors
}

func euclidean(a, b []float64) float64 {
	var sum float64
	for k := range a {
		d := a[k] - b[k]
		sum += d * d
	}
	return math.Sqrt(sum)
}
