package service

import (
	"math/rand"

	"roll-call/internal/model"
)

// nameTokens 随机名单使用的姓名词表
var nameTokens = []string{"Alan", "John", "Brandon", "Key", "Branda", "Morris", "Carlos", "Lee"}

// GenerateStudents 生成 n 名随机姓名的学生（ID 由数据库分配）
func GenerateStudents(n int, rng *rand.Rand) []model.Student {
	students := make([]model.Student, 0, n)
	for i := 0; i < n; i++ {
		students = append(students, model.Student{
			FirstName: nameTokens[rng.Intn(len(nameTokens))],
			LastName:  nameTokens[rng.Intn(len(nameTokens))],
		})
	}
	return students
}
