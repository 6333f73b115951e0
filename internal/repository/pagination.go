package repository

import "gorm.io/gorm"

// applyPagination 应用分页参数，统一处理非法页码与偏移量。
func applyPagination(query *gorm.DB, page, pageSize int) *gorm.DB {
	if query == nil || pageSize <= 0 {
		return query
	}
	if page < 1 {
		page = 1
	}
	offset := (page - 1) * pageSize
	if offset < 0 {
		offset = 0
	}
	return query.Limit(pageSize).Offset(offset)
}

// countAndPage 先统计总数再分页查询
func countAndPage(query *gorm.DB, page, pageSize int, dest interface{}) (int64, error) {
	var total int64
	if err := query.Count(&total).Error; err != nil {
		return 0, err
	}
	if err := applyPagination(query, page, pageSize).Find(dest).Error; err != nil {
		return 0, err
	}
	return total, nil
}
