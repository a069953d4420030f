package p

func inc(x int) int { return x + 1 }

func run() int {
	x := 5
	return inc(x)
}

func count() int {
	i := 0
	for i < 10 {
		i++
	}
	return i
}

func swap(a, b int) int {
	for a > 0 {
		a, b = b, a-1
	}
	return b
}

type Getter interface{ Get() int }

type One struct{}

func (One) Get() int { return 1 }

func dyn(g Getter) int { return g.Get() }
