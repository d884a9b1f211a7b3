package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/user/giftgenius/internal/apperr"
	"github.com/user/giftgenius/internal/model"
)

type seedGift struct {
	gift    model.Gift
	ratings []seedReview
}

type seedReview struct {
	name     string
	length   string
	rating   int
	text     string
	occasion string
	helpful  int
}

// seedData 初始目录。成功率由维护任务根据评价计算，这里不直接写入。
var seedData = []seedGift{
	{
		gift: model.Gift{Title: "Personalized Star Map Necklace", Description: "Sterling silver pendant engraved with the night sky of a chosen date",
			Price: 89.99, Category: "jewelry", Occasion: "anniversary", RelationshipStage: "serious", Retailer: "Etsy", DeliveryDays: 5},
		ratings: []seedReview{
			{"Marcus T.", "3 years", 5, "She cried when she saw the stars from our first date.", "anniversary", 24},
			{"Daniel R.", "5 years", 5, "Beautiful quality and fast shipping.", "anniversary", 12},
			{"Chris P.", "2 years", 4, "Great gift, chain could be a little longer.", "birthday", 6},
		},
	},
	{
		gift: model.Gift{Title: "Birthstone Stacking Ring", Description: "Dainty gold-filled ring with a genuine birthstone",
			Price: 45.00, Category: "jewelry", Occasion: "birthday", RelationshipStage: "dating", Retailer: "Amazon", DeliveryDays: 3},
		ratings: []seedReview{
			{"Jake M.", "6 months", 5, "Perfect early-relationship gift, not too much.", "birthday", 9},
			{"Owen L.", "1 year", 3, "Ran a bit small.", "birthday", 2},
		},
	},
	{
		gift: model.Gift{Title: "Diamond Tennis Bracelet", Description: "Lab-grown diamonds set in 14k white gold",
			Price: 1299.00, Category: "jewelry", Occasion: "anniversary", RelationshipStage: "married", Retailer: "Blue Nile", DeliveryDays: 7},
		ratings: []seedReview{
			{"Victor S.", "10 years", 5, "Worth every penny for our tenth.", "anniversary", 31},
			{"Alan B.", "8 years", 5, "Stunning.", "anniversary", 8},
			{"Greg H.", "12 years", 4, "She wears it every day.", "christmas", 5},
			{"Nate F.", "7 years", 2, "Clasp broke after a month.", "anniversary", 14},
		},
	},
	{
		gift: model.Gift{Title: "Noise Cancelling Headphones", Description: "Over-ear wireless headphones with 30 hour battery life",
			Price: 249.99, Category: "tech", Occasion: "birthday", RelationshipStage: "serious", Retailer: "Best Buy", DeliveryDays: 2},
		ratings: []seedReview{
			{"Sam K.", "4 years", 5, "Her commute is finally quiet.", "birthday", 11},
			{"Leo W.", "2 years", 4, "Great sound, a bit heavy.", "christmas", 3},
			{"Ian D.", "1 year", 4, "Exactly what she wanted.", "birthday", 1},
		},
	},
	{
		gift: model.Gift{Title: "Digital Photo Frame", Description: "Wi-Fi frame that family can send photos to from their phones",
			Price: 129.00, Category: "tech", Occasion: "christmas", RelationshipStage: "married", Retailer: "Amazon", DeliveryDays: 2},
		ratings: []seedReview{
			{"Paul G.", "15 years", 5, "Loaded it with our wedding photos.", "christmas", 17},
			{"Ray N.", "9 years", 3, "Setup was fiddly.", "christmas", 4},
		},
	},
	{
		gift: model.Gift{Title: "Smart Mug", Description: "Temperature controlled mug that keeps coffee hot",
			Price: 99.95, Category: "tech", Occasion: "just-because", RelationshipStage: "dating", Retailer: "Ember", DeliveryDays: 4},
	},
	{
		gift: model.Gift{Title: "Weighted Blanket", Description: "Cooling bamboo weighted blanket for better sleep",
			Price: 119.00, Category: "home", Occasion: "just-because", RelationshipStage: "serious", Retailer: "Target", DeliveryDays: 3},
		ratings: []seedReview{
			{"Tom E.", "3 years", 5, "She sleeps through the night now.", "just-because", 7},
			{"Ben A.", "2 years", 5, "Cozy and well made.", "christmas", 2},
		},
	},
	{
		gift: model.Gift{Title: "Scented Candle Set", Description: "Three hand-poured soy candles in seasonal scents",
			Price: 38.50, Category: "home", Occasion: "valentine", RelationshipStage: "dating", Retailer: "Etsy", DeliveryDays: 5},
		ratings: []seedReview{
			{"Eli C.", "4 months", 3, "Nice but the scent is faint.", "valentine", 1},
			{"Max J.", "8 months", 2, "Arrived cracked.", "valentine", 3},
		},
	},
	{
		gift: model.Gift{Title: "Cashmere Scarf", Description: "Soft oversized scarf in 100% Mongolian cashmere",
			Price: 159.00, Category: "fashion", Occasion: "christmas", RelationshipStage: "engaged", Retailer: "Nordstrom", DeliveryDays: 4},
		ratings: []seedReview{
			{"Adam Y.", "5 years", 5, "Softest thing she owns.", "christmas", 10},
			{"Kyle V.", "3 years", 4, "Lovely color.", "birthday", 2},
			{"Noah Z.", "6 years", 5, "Bought a second one for her sister.", "christmas", 4},
		},
	},
	{
		gift: model.Gift{Title: "Leather Crossbody Bag", Description: "Italian leather bag with adjustable strap",
			Price: 210.00, Category: "fashion", Occasion: "birthday", RelationshipStage: "married", Retailer: "Madewell", DeliveryDays: 6},
		ratings: []seedReview{
			{"Luke O.", "11 years", 4, "Great everyday bag.", "birthday", 3},
		},
	},
	{
		gift: model.Gift{Title: "Luxury Skincare Set", Description: "Cleanser, serum and moisturizer from a clean beauty brand",
			Price: 135.00, Category: "beauty", Occasion: "valentine", RelationshipStage: "serious", Retailer: "Sephora", DeliveryDays: 3},
		ratings: []seedReview{
			{"Ryan I.", "2 years", 5, "She asked where I learned about skincare.", "valentine", 6},
			{"Evan U.", "3 years", 4, "Good set, smells great.", "birthday", 1},
			{"Cole Q.", "1 year", 3, "Not for sensitive skin.", "valentine", 5},
		},
	},
	{
		gift: model.Gift{Title: "Artisan Chocolate Box", Description: "Twenty-four hand-painted bonbons from a small chocolatier",
			Price: 48.00, Category: "food", Occasion: "valentine", RelationshipStage: "dating", Retailer: "Vosges", DeliveryDays: 2},
		ratings: []seedReview{
			{"Finn X.", "3 months", 5, "Too pretty to eat. We ate them anyway.", "valentine", 8},
			{"Jon S.", "7 months", 4, "Delicious.", "valentine", 0},
		},
	},
	{
		gift: model.Gift{Title: "Wine Tasting Subscription", Description: "Three months of curated wines delivered monthly",
			Price: 180.00, Category: "food", Occasion: "anniversary", RelationshipStage: "married", Retailer: "Winc", DeliveryDays: 7},
	},
	{
		gift: model.Gift{Title: "Couples Cooking Class", Description: "Hands-on pasta making class for two",
			Price: 150.00, Category: "experiences", Occasion: "anniversary", RelationshipStage: "serious", Retailer: "Cozymeal", DeliveryDays: 1},
		ratings: []seedReview{
			{"Hugh P.", "4 years", 5, "Best date night we have had in ages.", "anniversary", 19},
			{"Mark D.", "6 years", 5, "We make the pasta at home now.", "birthday", 7},
		},
	},
	{
		gift: model.Gift{Title: "Hot Air Balloon Ride", Description: "Sunrise balloon flight with champagne toast",
			Price: 399.00, Category: "experiences", Occasion: "proposal", RelationshipStage: "engaged", Retailer: "Virgin Experience Days", DeliveryDays: 1},
		ratings: []seedReview{
			{"Sean R.", "3 years", 5, "She said yes at 2000 feet.", "proposal", 42},
		},
	},
	{
		gift: model.Gift{Title: "Custom Illustrated Portrait", Description: "Hand-drawn portrait of the two of you from a photo",
			Price: 75.00, Category: "unique", Occasion: "anniversary", RelationshipStage: "dating", Retailer: "Etsy", DeliveryDays: 10},
		ratings: []seedReview{
			{"Alex T.", "1 year", 5, "Framed it the same day.", "anniversary", 13},
			{"Drew M.", "9 months", 4, "Artist was great to work with.", "birthday", 2},
			{"Theo B.", "1 year", 1, "Never arrived in time.", "anniversary", 9},
		},
	},
}

// Seed 存储为空时在一个事务内写入初始礼物和评价，返回写入的礼物数
func Seed(ctx context.Context, repos *Repositories) (int, error) {
	n, err := repos.Gift.CountAll(ctx)
	if err != nil {
		return 0, apperr.Wrap(err, "统计礼物失败")
	}
	if n > 0 {
		return 0, nil
	}

	base := time.Now().Add(-time.Duration(len(seedData)) * 24 * time.Hour)
	gifts := make([]*model.Gift, len(seedData))
	for i := range seedData {
		g := seedData[i].gift
		g.IsActive = true
		g.ImageURL = fmt.Sprintf("https://images.giftgenius.app/seed/%d.jpg", i+1)
		g.AffiliateURL = fmt.Sprintf("https://go.giftgenius.app/seed/%d", i+1)
		g.CreatedAt = base.Add(time.Duration(i) * 24 * time.Hour)
		gifts[i] = &g
	}
	err = repos.WithTx(ctx, func(tx *Repositories) error {
		if err := tx.Gift.Create(ctx, gifts); err != nil {
			return apperr.Wrap(err, "写入礼物失败")
		}

		var testimonials []*model.Testimonial
		for i, sg := range seedData {
			for j, r := range sg.ratings {
				testimonials = append(testimonials, &model.Testimonial{
					GiftID:             gifts[i].ID,
					ReviewerName:       r.name,
					RelationshipLength: r.length,
					PartnerRating:      r.rating,
					TestimonialText:    r.text,
					Occasion:           r.occasion,
					HelpfulVotes:       r.helpful,
					CreatedAt:          gifts[i].CreatedAt.Add(time.Duration(j+1) * time.Hour),
				})
			}
		}
		if err := tx.Testimonial.Create(ctx, testimonials); err != nil {
			return apperr.Wrap(err, "写入评价失败")
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return len(gifts), nil
}
