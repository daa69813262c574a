package serialize

import "strconv"

func fieldPath(path []string, name string) []string {
	return append(append(make([]string, 0, len(path)+1), path...), name)
}

func indexPath(path []string, i int) []string {
	return append(append(make([]string, 0, len(path)+1), path...), "["+strconv.Itoa(i)+"]")
}
