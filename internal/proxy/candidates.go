package proxy

// バックエンドの農家向け商品ルートが確定するまでの候補。
// 上から順に試す。ルートが安定したらこのパッケージごと消す。
var (
	FarmerProductsList = []string{
		"/products/farmer",
		"/farmers/products",
		"/products",
	}

	FarmerProductsCreate = []string{
		"/products/farmer",
		"/farmers/products",
		"/farmer/products",
		"/products/farmer/create",
		"/products/create",
		"/products",
	}
)
