// Package seed replaces the store contents with a small sample data set.
package seed

import (
	"context"
	"fmt"

	"blograg/internal/domain"
)

// Result counts the inserted records.
type Result struct {
	Users int `json:"users"`
	Blogs int `json:"blogs"`
}

// Run deletes every document and user, then inserts the sample data. The
// caller is responsible for refreshing the index afterwards.
func Run(ctx context.Context, store domain.DocumentStore) (Result, error) {
	if err := store.DeleteAllDocuments(ctx); err != nil {
		return Result{}, fmt.Errorf("seed: clear documents: %w", err)
	}
	if err := store.DeleteAllUsers(ctx); err != nil {
		return Result{}, fmt.Errorf("seed: clear users: %w", err)
	}
	users, err := store.InsertUsers(ctx, Users())
	if err != nil {
		return Result{}, fmt.Errorf("seed: insert users: %w", err)
	}
	blogs, err := store.InsertDocuments(ctx, Blogs())
	if err != nil {
		return Result{}, fmt.Errorf("seed: insert blogs: %w", err)
	}
	return Result{Users: len(users), Blogs: len(blogs)}, nil
}

func Users() []domain.User {
	return []domain.User{
		{Username: "nguyen_van_a", Email: "a@example.com"},
		{Username: "tran_thi_b", Email: "b@example.com"},
	}
}

func Blogs() []domain.Document {
	return []domain.Document{
		{
			Title:    "Giới thiệu về Machine Learning",
			Body:     "Machine Learning là một nhánh của trí tuệ nhân tạo cho phép máy tính học từ dữ liệu mà không cần lập trình cụ thể. Các thuật toán ML có thể phát hiện patterns trong dữ liệu và đưa ra dự đoán. Có 3 loại chính: supervised learning, unsupervised learning, và reinforcement learning.",
			Author:   "nguyen_van_a",
			Category: "technology",
			Views:    150,
		},
		{
			Title:    "Hướng dẫn nấu Phở Việt Nam",
			Body:     "Phở là món ăn truyền thống của Việt Nam. Để nấu phở ngon, bạn cần nước dùng trong, thơm từ xương hầm 8-10 tiếng. Gia vị quan trọng gồm hành, gừng nướng, hồi, quế. Bánh phở phải mềm dai, thịt bò thái mỏng. Ăn kèm với rau thơm, chanh, ớt.",
			Author:   "tran_thi_b",
			Category: "food",
			Views:    200,
		},
		{
			Title:    "Du lịch Đà Lạt - Thành phố ngàn hoa",
			Body:     "Đà Lạt nổi tiếng với khí hậu mát mẻ quanh năm, nhiều đồi thông và hoa. Các địa điểm nên ghé thăm: Hồ Xuân Hương, Thung lũng Tình Yêu, Đồi Mộng Mơ, Vườn hoa thành phố. Đặc sản: dâu tây, atiso, rượu vang. Thời điểm đẹp nhất: tháng 12-3.",
			Author:   "nguyen_van_a",
			Category: "travel",
			Views:    180,
		},
		{
			Title:    "Lập trình Python cho người mới bắt đầu",
			Body:     "Python là ngôn ngữ lập trình dễ học, cú pháp đơn giản. Ứng dụng rộng rãi: web development, data science, AI, automation. Bắt đầu với: biến, vòng lặp, hàm, class. Thư viện phổ biến: NumPy, Pandas, Django, Flask. Cộng đồng lớn, tài liệu phong phú.",
			Author:   "tran_thi_b",
			Category: "technology",
			Views:    300,
		},
		{
			Title:    "Bí quyết chăm sóc sức khỏe mùa đông",
			Body:     "Mùa đông cần chú ý giữ ấm cơ thể, đặc biệt vùng cổ, ngực, bàn chân. Uống đủ nước, ăn nhiều trái cây giàu vitamin C. Tập thể dục đều đặn nhưng tránh ra ngoài quá sớm. Ngủ đủ giấc 7-8 tiếng. Rửa tay thường xuyên phòng bệnh.",
			Author:   "nguyen_van_a",
			Category: "health",
			Views:    120,
		},
	}
}
