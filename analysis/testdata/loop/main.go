package main

import "fmt"

func count(n int) int {
	i := 0
	for i < n {
		i = next(i)
	}
	return i
}

func next(i int) int { return i + 1 }

//absint:ignore
func unknown() int { return 42 }

func main() {
	fmt.Println(count(10) + unknown())
}
