// Package utils 提供 pagination 等通用工具
package utils

// Paginate 计算 [offset, offset+limit) 在 total 内的窗口边界
// limit <= 0 时取 defaultLimit，offset 越界时返回空窗口
func Paginate(total, limit, offset, defaultLimit int) (start, end int) {
	if limit <= 0 {
		limit = defaultLimit
	}
	if offset < 0 {
		offset = 0
	}
	if offset >= total {
		return total, total
	}
	end = offset + limit
	if end > total {
		end = total
	}
	return offset, end
}
